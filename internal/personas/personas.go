package personas

// Persona is one fixed stylistic contract for roadmap generation. Each
// realization request runs every persona in parallel and keeps all results.
type Persona struct {
	ID       string
	Name     string
	Role     string
	Style    string
	Emphasis string
}

// Default returns the standing persona roster in generation order. The
// output array of a realization preserves this order; the first entry is the
// initially selected agent.
func Default() []Persona {
	return []Persona{
		{
			ID:       "systems-architect",
			Name:     "Systems Architect",
			Role:     "Designs coherent, layered curricula that build strong conceptual foundations before deep specialization.",
			Style:    "Structured, methodical, favors sequencing concepts logically and minimizing cognitive overload.",
			Emphasis: "Official documentation, specs, and long-form reference material that ensure conceptual depth.",
		},
		{
			ID:       "project-hacker",
			Name:     "Project Hacker",
			Role:     "Optimizes for fast feedback and learning-by-building real projects from day one.",
			Style:    "Pragmatic, example-heavy, favors project templates, repos and rapid iteration.",
			Emphasis: "GitHub repos, starter kits, and hands-on tutorials that lead to shippable artifacts.",
		},
		{
			ID:       "research-mentor",
			Name:     "Research Mentor",
			Role:     "Curates high-signal theory, articles and talks to give you deep mental models.",
			Style:    "Academic-leaning but applied, prioritizes high-quality articles, conference talks, and conceptual explainers.",
			Emphasis: "Carefully selected articles, blog posts, and video talks with strong explanatory power.",
		},
		{
			ID:       "constraints-optimizer",
			Name:     "Constraints Optimizer",
			Role:     "Designs a roadmap that strictly respects time, budget and hardware limitations.",
			Style:    "Minimalist and efficient, tends to pick fewer, higher-leverage resources while avoiding heavy tooling.",
			Emphasis: "Free or low-cost resources that run well on the given device and fit within weekly hours.",
		},
	}
}
