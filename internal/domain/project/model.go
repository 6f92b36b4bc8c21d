package project

import (
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain"
	"github.com/r3labs/diff"
	"github.com/samber/lo"
	"sort"
	"strings"
	"time"
)

var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
	ErrNoProjects      = errors.New("no projects available")
)

const (
	EventRefreshed = "project.refreshed"
)

// Project is one repository card; its diff tags are the repos table columns.
type Project struct {
	Name        string `diff:"-" json:"reponame"`
	Description string `diff:"description" json:"description"`
	URL         string `diff:"html_url" json:"html_url"`
}

func New(name, description, url string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		URL:         url,
	}
}

func SortByName(projects []*Project) []*Project {
	sorted := make([]*Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// Visible drops the projects whose names are hidden.
func Visible(projects []*Project, hidden []string) []*Project {
	return lo.Filter(projects, func(p *Project, _ int) bool {
		return p.Name != "" && !lo.Contains(hidden, p.Name)
	})
}

type Change struct {
	Project *Project
	Changes diff.Changelog
}

type Plan struct {
	Added   []*Project
	Changed []Change
	Removed []string
}

func (p Plan) Empty() bool {
	return len(p.Added) == 0 && len(p.Changed) == 0 && len(p.Removed) == 0
}

// Catalog is the set of stored projects, reconciled against an upstream listing.
type Catalog struct {
	domain.Aggregate
	projects map[string]*Project
}

func NewCatalog(existing []*Project) *Catalog {
	return &Catalog{
		projects: lo.Associate(existing, func(p *Project) (string, *Project) {
			return p.Name, p
		}),
	}
}

func (c *Catalog) ID() string {
	return "projects"
}

func (c *Catalog) Projects() []*Project {
	return SortByName(lo.Values(c.projects))
}

// Reconcile replaces the catalog contents with fetched and returns the
// storage changes needed to get there. Unnamed entries are ignored; for
// duplicate names the last one wins.
func (c *Catalog) Reconcile(fetched []*Project) (Plan, error) {
	incoming := make(map[string]*Project, len(fetched))
	order := make([]string, 0, len(fetched))
	for _, p := range fetched {
		if p.Name == "" {
			continue
		}
		if _, seen := incoming[p.Name]; !seen {
			order = append(order, p.Name)
		}
		incoming[p.Name] = p
	}

	var plan Plan
	for _, name := range order {
		p := incoming[name]
		old, ok := c.projects[name]
		if !ok {
			plan.Added = append(plan.Added, p)
			continue
		}

		changes, err := diff.Diff(old, p)
		if err != nil {
			return Plan{}, fmt.Errorf("diff project %s: %w", name, err)
		}
		if len(changes) != 0 {
			plan.Changed = append(plan.Changed, Change{Project: p, Changes: changes})
		}
	}

	for name := range c.projects {
		if _, ok := incoming[name]; !ok {
			plan.Removed = append(plan.Removed, name)
		}
	}
	sort.Strings(plan.Removed)

	c.projects = incoming
	c.PushEvent(RefreshedEvent{
		EventBase: domain.NewEventBase(EventRefreshed, time.Now().UTC()),
		Projects:  c.Projects(),
	})

	return plan, nil
}

// RefreshedEvent carries the committed project list.
type RefreshedEvent struct {
	domain.EventBase
	Projects []*Project
}
