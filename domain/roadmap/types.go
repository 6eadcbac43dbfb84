package roadmap

import (
	"time"

	"polypath/domain/jobs"
)

// ResourceType categorizes a roadmap resource entry.
type ResourceType string

const (
	ResourceVideo   ResourceType = "video"
	ResourceArticle ResourceType = "article"
	ResourceProject ResourceType = "project"
	ResourceCourse  ResourceType = "course"
)

// Resource is one learning resource assigned to a week.
type Resource struct {
	Type    ResourceType `json:"type"`
	Title   string       `json:"title"`
	URL     string       `json:"url"`
	Summary string       `json:"summary"`
}

// Week is one unit of the weekly curriculum.
type Week struct {
	Week      int        `json:"week"`
	Focus     string     `json:"focus"`
	Goals     []string   `json:"goals"`
	Resources []Resource `json:"resources"`
}

// Roadmap is a complete weekly curriculum.
type Roadmap struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Weeks   []Week `json:"weeks"`
}

// PersonaRoadmap is the output of one persona's generation task.
type PersonaRoadmap struct {
	PersonaID   string  `json:"personaId"`
	PersonaName string  `json:"personaName"`
	Roadmap     Roadmap `json:"roadmap"`
}

// Strategy is a pedagogical approach drafted for a learner, one of which is
// selected for realization.
type Strategy struct {
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Weeks   int    `json:"weeks,omitempty"`
	DemoURL string `json:"demoUrl,omitempty"`
}

// LearnerProfile is the learner's goal and constraint configuration. The
// realization pipeline reads it; the intake flow owns it.
type LearnerProfile struct {
	Topic          string  `json:"topic"`
	Level          string  `json:"level"`
	Style          string  `json:"style,omitempty"`
	Hours          float64 `json:"hours,omitempty"`
	GoalAlignment  string  `json:"goalAlignment,omitempty"`
	Budget         string  `json:"budget,omitempty"`
	DeviceSpecs    string  `json:"deviceSpecs,omitempty"`
	PreferredTools string  `json:"preferredTools,omitempty"`
	ProjectType    string  `json:"projectType,omitempty"`
	Language       string  `json:"language,omitempty"`
	Deadline       string  `json:"deadline,omitempty"`
	TargetWeeks    int     `json:"targetWeeks,omitempty"`
	UserID         string  `json:"userId,omitempty"`
}

// Record statuses.
const (
	StatusDraft = "draft"
	StatusReady = "ready"
)

// Record is the durable roadmap record keyed by ID.
type Record struct {
	ID               string
	Config           LearnerProfile
	Strategies       []Strategy
	SelectedStrategy *Strategy
	Status           string
	Logs             []string
	SandboxID        string
	FinalRoadmap     *Roadmap
	AgentRoadmaps    []PersonaRoadmap
	SelectedAgentID  string
	Jobs             *jobs.Block
	CreatedAt        time.Time
}

// FindAgent returns the persona roadmap with the given id, if present.
func (r *Record) FindAgent(agentID string) (PersonaRoadmap, bool) {
	for _, a := range r.AgentRoadmaps {
		if a.PersonaID == agentID {
			return a, true
		}
	}
	return PersonaRoadmap{}, false
}
