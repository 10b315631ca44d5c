package main

import (
	"fmt"
	"math/bits"
)

// SkillSet is a bitset over the shared 15-skill vocabulary. The same type
// backs both skill_* ("I can do this") and looking_* ("I want a teammate who
// can do this") flags, since both families use the identical vocabulary.
type SkillSet uint64

// InterestSet is a bitset over the 8 topical interests. Display-only, never
// scored.
type InterestSet uint64

// ExperienceSet is a bitset over the 3 experience tiers. Writes are
// validated single-select, but the storage tolerates legacy multi-bit rows;
// display resolution order is beginner, intermediate, advanced.
type ExperienceSet uint64

// Skill vocabulary. Order matters: it fixes bit positions, so it must never
// be reordered, only appended to.
var skillStems = []string{
	"webdev", "frontend", "backend", "ml", "ai",
	"data_analysis", "mobile", "cloud", "devops",
	"database", "cybersecurity", "uiux", "figma",
	"iot", "embedded",
}

var skillLabels = map[string]string{
	"webdev":        "Web Development",
	"frontend":      "Frontend",
	"backend":       "Backend",
	"ml":            "Machine Learning",
	"ai":            "AI",
	"data_analysis": "Data Analysis",
	"mobile":        "Mobile Development",
	"cloud":         "Cloud Computing",
	"devops":        "DevOps",
	"database":      "Database",
	"cybersecurity": "Cybersecurity",
	"uiux":          "UI/UX Design",
	"figma":         "Figma",
	"iot":           "IoT",
	"embedded":      "Embedded Systems",
}

var interestStems = []string{
	"startups", "research", "competitions", "opensource",
	"freelancing", "networking", "mentorship", "hackathons",
}

var interestLabels = map[string]string{
	"startups":     "Startups",
	"research":     "Research",
	"competitions": "Competitions",
	"opensource":   "Open Source",
	"freelancing":  "Freelancing",
	"networking":   "Networking",
	"mentorship":   "Mentorship",
	"hackathons":   "Hackathons",
}

// Tier order doubles as display-resolution priority.
var experienceStems = []string{"beginner", "intermediate", "advanced"}

func (s SkillSet) has(i int) bool      { return s&(1<<uint(i)) != 0 }
func (s InterestSet) has(i int) bool   { return s&(1<<uint(i)) != 0 }
func (s ExperienceSet) has(i int) bool { return s&(1<<uint(i)) != 0 }

// count returns the number of set skill bits.
func (s SkillSet) count() int { return bits.OnesCount64(uint64(s)) }

// Labels expands a skill bitset to its display labels, in vocabulary order.
func (s SkillSet) Labels() []string {
	labels := []string{}
	for i, stem := range skillStems {
		if s.has(i) {
			labels = append(labels, skillLabels[stem])
		}
	}
	return labels
}

// Labels expands an interest bitset to its display labels.
func (s InterestSet) Labels() []string {
	labels := []string{}
	for i, stem := range interestStems {
		if s.has(i) {
			labels = append(labels, interestLabels[stem])
		}
	}
	return labels
}

// Label resolves an experience bitset to a single display tier, or "" when
// no tier is set. Lower tiers win when a legacy row carries several bits.
func (s ExperienceSet) Label() string {
	switch {
	case s.has(0):
		return "Beginner"
	case s.has(1):
		return "Intermediate"
	case s.has(2):
		return "Advanced"
	default:
		return ""
	}
}

// FlagMap renders the choices back into the named-boolean wire schema
// (skill_webdev, looking_ml, interest_startups, experience_beginner, ...).
// Absent flags are simply omitted; clients treat missing as false.
func (c *Choices) FlagMap() map[string]bool {
	flags := make(map[string]bool)
	for i, stem := range skillStems {
		if c.Skills.has(i) {
			flags["skill_"+stem] = true
		}
		if c.Looking.has(i) {
			flags["looking_"+stem] = true
		}
	}
	for i, stem := range interestStems {
		if c.Interests.has(i) {
			flags["interest_"+stem] = true
		}
	}
	for i, stem := range experienceStems {
		if c.Experience.has(i) {
			flags["experience_"+stem] = true
		}
	}
	return flags
}

// parseChoices converts a wire flag map into bitsets. Unknown flag names and
// multi-select experience are rejected; this is the single write-side
// validation point for attribute sets.
func parseChoices(userID int, flags map[string]bool) (*Choices, error) {
	skillBit := make(map[string]int, len(skillStems))
	for i, stem := range skillStems {
		skillBit[stem] = i
	}
	interestBit := make(map[string]int, len(interestStems))
	for i, stem := range interestStems {
		interestBit[stem] = i
	}
	experienceBit := make(map[string]int, len(experienceStems))
	for i, stem := range experienceStems {
		experienceBit[stem] = i
	}

	c := &Choices{UserID: userID}
	for name, set := range flags {
		if !set {
			continue
		}
		switch {
		case len(name) > 6 && name[:6] == "skill_":
			i, ok := skillBit[name[6:]]
			if !ok {
				return nil, fmt.Errorf("unknown choice flag %q", name)
			}
			c.Skills |= 1 << uint(i)
		case len(name) > 8 && name[:8] == "looking_":
			i, ok := skillBit[name[8:]]
			if !ok {
				return nil, fmt.Errorf("unknown choice flag %q", name)
			}
			c.Looking |= 1 << uint(i)
		case len(name) > 9 && name[:9] == "interest_":
			i, ok := interestBit[name[9:]]
			if !ok {
				return nil, fmt.Errorf("unknown choice flag %q", name)
			}
			c.Interests |= 1 << uint(i)
		case len(name) > 11 && name[:11] == "experience_":
			i, ok := experienceBit[name[11:]]
			if !ok {
				return nil, fmt.Errorf("unknown choice flag %q", name)
			}
			c.Experience |= 1 << uint(i)
		default:
			return nil, fmt.Errorf("unknown choice flag %q", name)
		}
	}

	if bits.OnesCount64(uint64(c.Experience)) > 1 {
		return nil, fmt.Errorf("experience must be a single tier")
	}
	return c, nil
}
