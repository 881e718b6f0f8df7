package parrot

import (
	"fmt"
	"sort"
)

// Category groups skills by the part of the parrot they develop.
type Category string

const (
	CategoryExpression   Category = "EXPRESSION"
	CategoryIntelligence Category = "INTELLIGENCE"
	CategorySocial       Category = "SOCIAL"
	CategorySpecial      Category = "SPECIAL"
)

var validCategories = map[Category]bool{
	CategoryExpression:   true,
	CategoryIntelligence: true,
	CategorySocial:       true,
	CategorySpecial:      true,
}

// SkillStatus is a skill's standing relative to a particular parrot.
type SkillStatus string

const (
	SkillUnlocked  SkillStatus = "UNLOCKED"
	SkillAvailable SkillStatus = "AVAILABLE"
	SkillLocked    SkillStatus = "LOCKED"
)

// Skill is an immutable catalog entry.
type Skill struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	RequiredLevel int      `json:"required_level"`
	Category      Category `json:"category"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

func (s Skill) clone() Skill {
	if s.Prerequisites != nil {
		s.Prerequisites = append([]string(nil), s.Prerequisites...)
	}
	return s
}

// SkillSet is a set of skill ids.
type SkillSet map[string]struct{}

// NewSkillSet builds a set from ids.
func NewSkillSet(ids ...string) SkillSet {
	s := make(SkillSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s SkillSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s SkillSet) Add(id string) {
	s[id] = struct{}{}
}

// Clone returns an independent copy.
func (s SkillSet) Clone() SkillSet {
	out := make(SkillSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the members in sorted order.
func (s SkillSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Catalog is a read-only registry of skills. Construct it once and share it.
type Catalog struct {
	skills []Skill
	byID   map[string]int
}

// NewCatalog validates skills and builds a catalog. Ids must be unique,
// categories known, prerequisites present, and no prerequisite may require a
// higher level than the skill depending on it.
func NewCatalog(skills ...Skill) (*Catalog, error) {
	c := &Catalog{
		skills: make([]Skill, 0, len(skills)),
		byID:   make(map[string]int, len(skills)),
	}
	for _, s := range skills {
		if s.ID == "" {
			return nil, fmt.Errorf("skill %q: empty id", s.Name)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("skill %s: duplicate id", s.ID)
		}
		if !validCategories[s.Category] {
			return nil, fmt.Errorf("skill %s: invalid category %q", s.ID, s.Category)
		}
		if s.RequiredLevel < 1 {
			return nil, fmt.Errorf("skill %s: required level %d < 1", s.ID, s.RequiredLevel)
		}
		c.byID[s.ID] = len(c.skills)
		c.skills = append(c.skills, s.clone())
	}

	for _, s := range c.skills {
		for _, pid := range s.Prerequisites {
			idx, ok := c.byID[pid]
			if !ok {
				return nil, fmt.Errorf("skill %s: unknown prerequisite %s", s.ID, pid)
			}
			if pre := c.skills[idx]; pre.RequiredLevel > s.RequiredLevel {
				return nil, fmt.Errorf("skill %s (level %d): prerequisite %s requires level %d",
					s.ID, s.RequiredLevel, pid, pre.RequiredLevel)
			}
		}
	}
	return c, nil
}

// Skill looks up a skill by id.
func (c *Catalog) Skill(id string) (Skill, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Skill{}, false
	}
	return c.skills[idx].clone(), true
}

// All returns every skill in catalog order.
func (c *Catalog) All() []Skill {
	out := make([]Skill, len(c.skills))
	for i, s := range c.skills {
		out[i] = s.clone()
	}
	return out
}

// SkillsForLevel returns the skills whose required level is exactly level.
func (c *Catalog) SkillsForLevel(level int) []Skill {
	var out []Skill
	for _, s := range c.skills {
		if s.RequiredLevel == level {
			out = append(out, s.clone())
		}
	}
	return out
}

// SkillsByCategory returns the skills in cat.
func (c *Catalog) SkillsByCategory(cat Category) []Skill {
	var out []Skill
	for _, s := range c.skills {
		if s.Category == cat {
			out = append(out, s.clone())
		}
	}
	return out
}

// IsUnlockable reports whether skill can be unlocked now: not yet held, the
// level requirement is met, and every prerequisite is held.
func (c *Catalog) IsUnlockable(level int, unlocked SkillSet, skill Skill) bool {
	if unlocked.Has(skill.ID) {
		return false
	}
	if level < skill.RequiredLevel {
		return false
	}
	for _, pid := range skill.Prerequisites {
		if !unlocked.Has(pid) {
			return false
		}
	}
	return true
}

// Classify returns the skill's status for a parrot at level holding unlocked.
func (c *Catalog) Classify(level int, unlocked SkillSet, skill Skill) SkillStatus {
	switch {
	case unlocked.Has(skill.ID):
		return SkillUnlocked
	case c.IsUnlockable(level, unlocked, skill):
		return SkillAvailable
	default:
		return SkillLocked
	}
}

// ResolveUnlocks returns the skills newly unlocked while climbing from
// oldLevel to newLevel, in ascending level order. Each level is checked
// against the set as it stood when that level began, so a skill never
// satisfies a prerequisite of another skill at the same level.
func (c *Catalog) ResolveUnlocks(oldLevel, newLevel int, unlocked SkillSet) []Skill {
	held := unlocked.Clone()
	var gained []Skill
	for level := oldLevel + 1; level <= newLevel; level++ {
		var atLevel []Skill
		for _, s := range c.SkillsForLevel(level) {
			if c.IsUnlockable(level, held, s) {
				atLevel = append(atLevel, s)
			}
		}
		for _, s := range atLevel {
			held.Add(s.ID)
		}
		gained = append(gained, atLevel...)
	}
	return gained
}

// DeriveUnlockedSkills resolves the skills crossed by a level change.
// Persisting them is the caller's job.
func DeriveUnlockedSkills(c *Catalog, oldLevel, newLevel int, unlocked SkillSet) []Skill {
	return c.ResolveUnlocks(oldLevel, newLevel, unlocked)
}
