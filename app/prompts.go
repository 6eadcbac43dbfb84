package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"polypath/domain/roadmap"
	"polypath/domain/scrape"
	"polypath/internal/personas"
)

const roadmapOutputFormat = `{
  "title": "string",
  "summary": "string",
  "weeks": [
    {
      "week": number,
      "focus": "string",
      "goals": ["string", "string"],
      "resources": [
        { "type": "video" | "article" | "project" | "course", "title": "string", "url": "string", "summary": "string" }
      ]
    }
  ]
}`

// buildPersonaPrompt assembles the realization prompt for one persona. The
// scraped resource list is embedded as JSON so the model can cite real URLs.
func buildPersonaPrompt(p personas.Persona, profile roadmap.LearnerProfile, strategy roadmap.Strategy, resources []scrape.Resource, targetWeeks int) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	resourcesJSON, _ := json.MarshalIndent(resources, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a Senior Curriculum Architect.\n", p.Name)
	fmt.Fprintf(&b, "Role: %s\n", p.Role)
	fmt.Fprintf(&b, "Style: %s\n", p.Style)
	fmt.Fprintf(&b, "Emphasis: %s\n\n", p.Emphasis)

	fmt.Fprintf(&b, "Create a %d-week learning roadmap for \"%s\" (%s).\n\n", targetWeeks, profile.Topic, profile.Level)

	fmt.Fprintf(&b, "STRATEGY CONTEXT:\nName: %s\nDescription: %s\n\n", strategy.Name, strategy.Desc)
	fmt.Fprintf(&b, "LEARNER PROFILE:\n%s\n\n", profileJSON)
	fmt.Fprintf(&b, "AVAILABLE RESOURCES (Scraped from Web):\n%s\n\n", resourcesJSON)

	fmt.Fprintf(&b, "INSTRUCTIONS:\n")
	fmt.Fprintf(&b, "1. Create a JSON roadmap with exactly %d weeks.\n", targetWeeks)
	fmt.Fprintf(&b, "2. For each week, assign specific goals and mapped resources.\n")
	fmt.Fprintf(&b, "3. PRIORITIZE the provided scraped resources. If a scraped resource fits a week, use it and set the 'type' accurately.\n")
	fmt.Fprintf(&b, "4. If no scraped resource fits a specific topic, generate a high-quality placeholder (e.g., \"Search for X on YouTube\").\n")
	fmt.Fprintf(&b, "5. Shape the curriculum according to your role, style, and emphasis above.\n\n")

	fmt.Fprintf(&b, "OUTPUT JSON FORMAT:\n%s\n", roadmapOutputFormat)
	return b.String()
}

// buildRefinePrompt assembles the prompt that rewrites an existing roadmap
// according to a user instruction.
func buildRefinePrompt(userPrompt string, profile roadmap.LearnerProfile, strategy roadmap.Strategy, base roadmap.Roadmap) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	strategyJSON, _ := json.MarshalIndent(strategy, "", "  ")
	baseJSON, _ := json.MarshalIndent(base, "", "  ")

	var b strings.Builder
	b.WriteString("You are refining an existing learning roadmap based on a user prompt.\n\n")
	fmt.Fprintf(&b, "USER PROMPT:\n%s\n\n", userPrompt)
	fmt.Fprintf(&b, "LEARNER PROFILE:\n%s\n\n", profileJSON)
	fmt.Fprintf(&b, "SELECTED STRATEGY:\n%s\n\n", strategyJSON)
	fmt.Fprintf(&b, "CURRENT ROADMAP (JSON):\n%s\n\n", baseJSON)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("- Modify the roadmap to satisfy the user prompt.\n")
	b.WriteString("- Keep the structure: title, summary, weeks[ { week, focus, goals[], resources[] } ].\n")
	b.WriteString("- Avoid search-result URLs; prefer direct resources.\n")
	b.WriteString("- Respect constraints: hours/week, targetWeeks, budget, deviceSpecs if present.\n")
	b.WriteString("- Return ONLY JSON for the refined roadmap.\n")
	return b.String()
}

// buildDraftPrompt assembles the intake prompt that brainstorms pedagogical
// strategies for a learner profile.
func buildDraftPrompt(profile roadmap.LearnerProfile) string {
	var b strings.Builder
	b.WriteString("You are a Senior Technical Curriculum Architect and Career Coach.\n")
	b.WriteString("You specialize in creating hyper-personalized learning roadmaps that respect hardware constraints, financial budgets, and hard deadlines.\n\n")

	b.WriteString("INPUT PROFILE:\n")
	fmt.Fprintf(&b, "- Primary Goal: %s\n", orDefault(profile.GoalAlignment, "General Upskilling"))
	fmt.Fprintf(&b, "- Topic/Stack: %s\n", orDefault(profile.Language, profile.Topic))
	fmt.Fprintf(&b, "- Current Level: %s\n", profile.Level)
	fmt.Fprintf(&b, "- Learning Style: %s (Adapt the curriculum delivery to this)\n", profile.Style)
	fmt.Fprintf(&b, "- Commitment: %g hours/week\n", profile.Hours)
	fmt.Fprintf(&b, "- Budget: %s (Strictly enforce this)\n", orDefault(profile.Budget, "No budget constraints"))
	fmt.Fprintf(&b, "- Hardware/Device: %s (Ensure tools run on this)\n", orDefault(profile.DeviceSpecs, "Standard Laptop"))
	fmt.Fprintf(&b, "- Preferred Tools: %s\n", orDefault(profile.PreferredTools, "Best Industry Standard"))
	fmt.Fprintf(&b, "- Desired Project: %s\n", orDefault(profile.ProjectType, "Portfolio-ready Application"))
	fmt.Fprintf(&b, "- Hard Deadline: %s\n\n", orDefault(profile.Deadline, "Flexible"))

	b.WriteString(`YOUR TASK:
1. Brainstorm 10 distinct pedagogical strategies based on this profile (e.g., "The Bootcamp Sprint", "The Academic Deep Dive", "The Project-First Hackathon", "The Open Source Contributor", etc.).
2. Filter these 10 down to the TOP 4 strategies that specifically maximize the user's "Goal Alignment" within their "Deadline" and "Budget".
3. Output those top 4 strategies as a JSON array.

OUTPUT FORMAT (JSON ONLY):
[
  {
    "name": "Catchy Strategy Title",
    "weeks": Integer,
    "desc": "2-3 sentence hook explaining WHY this specific strategy fits their device/budget/goal.",
    "demoUrl": "A plausible (fake) URL example like 'https://github.com/user/demo-project'"
  }
]

CONSTRAINTS:
- If Device Specs are low (e.g. Chromebook, old laptop), do NOT suggest heavy IDEs or Docker-heavy workflows; suggest cloud IDEs or lightweight tools.
- If Budget is $0, ONLY suggest free resources (Docs, YouTube, FreeCodeCamp).
- Return ONLY the JSON array. No markdown formatting, no introduction.
`)
	return b.String()
}

// buildResumePrompt assembles the tailoring prompt that fills the LaTeX
// template from the candidate's parsed resume text.
func buildResumePrompt(parsedText, role, location string, keywords []string, profile *roadmap.LearnerProfile) string {
	if len(parsedText) > maxResumePromptChars {
		parsedText = parsedText[:maxResumePromptChars]
	}
	profileJSON := []byte("{}")
	if profile != nil {
		profileJSON, _ = json.MarshalIndent(profile, "", "  ")
	}

	var b strings.Builder
	b.WriteString("You are an expert technical resume writer. Fill the provided LaTeX template by replacing all placeholders with concrete content based on the candidate data. Do NOT leave placeholders in the output. Output must be valid LaTeX starting with \\documentclass and ending with \\end{document}, with no markdown fences or extra commentary.\n\n")
	fmt.Fprintf(&b, "Template to fill:\n%s\n\n", baseLatexTemplate)
	b.WriteString("Inputs:\n")
	fmt.Fprintf(&b, "- Target role: %s\n", role)
	fmt.Fprintf(&b, "- Location focus: %s\n", orDefault(location, "Not specified"))
	fmt.Fprintf(&b, "- Keywords to emphasize: %s\n", orDefault(strings.Join(keywords, ", "), "None provided"))
	fmt.Fprintf(&b, "- Parsed resume text (source of facts): \"\"\"%s\"\"\"\n", parsedText)
	fmt.Fprintf(&b, "- Profile/config (optional): %s\n\n", profileJSON)
	b.WriteString(`Guidelines:
- Keep content concise, ATS-friendly, and metric-driven.
- Use real links or leave a plausible placeholder (e.g., "https://github.com/username") if not provided.
- Prefer strongest 2-3 roles/projects; compress older roles.
- Maintain the template structure and package set; do not add new packages.
`)
	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
