// Package reconcile is the decision core of assetsync. Given one feed's
// snapshot it matches source records to registry records, evaluates the
// field predicates for every matched pair, builds payloads for new records,
// and decides status transitions. Nothing here performs I/O.
package reconcile

import (
	"fmt"

	"github.com/agentstation/assetsync/internal/matcher"
	"github.com/agentstation/assetsync/pkg/assets"
	"github.com/agentstation/assetsync/pkg/constants"
)

// Config is the registry-side vocabulary the planner works in.
type Config struct {
	// Statuses are the concrete statuses transitions land on.
	Statuses assets.StatusTable
	// ActiveNames are glob patterns for statuses that count as active.
	ActiveNames []string
	// RetiredName is the status of records taken out of service by hand.
	RetiredName string
	// InactiveName is the status deactivation writes.
	InactiveName string

	Links       Links
	Institution Institution
	// StudentMarker feeds the default student rule.
	StudentMarker string
}

// DefaultConfig returns the deployment defaults.
func DefaultConfig() Config {
	return Config{
		Statuses: assets.StatusTable{
			Active:   assets.Status{ID: 916, Name: constants.StatusInUse},
			Inactive: assets.Status{ID: 918, Name: constants.StatusInactive},
		},
		ActiveNames:   []string{constants.StatusInUse, "Loaner - *"},
		RetiredName:   constants.StatusRetired,
		InactiveName:  constants.StatusInactive,
		Links:         DefaultLinks(),
		Institution:   DefaultInstitution(),
		StudentMarker: constants.DefaultStudentMarker,
	}
}

// Option configures a Planner.
type Option func(*Planner)

// WithConfig replaces the planner configuration.
func WithConfig(cfg Config) Option {
	return func(p *Planner) {
		p.cfg = cfg
	}
}

// WithStudentRule swaps the ownership exclusion rule.
func WithStudentRule(rule StudentRule) Option {
	return func(p *Planner) {
		p.studentRule = rule
	}
}

// Planner turns a snapshot into a Plan for one feed.
type Planner struct {
	policy      Policy
	cfg         Config
	active      *matcher.MultiMatcher
	studentRule StudentRule
}

// NewPlanner creates a planner for policy.
func NewPlanner(policy Policy, opts ...Option) (*Planner, error) {
	p := &Planner{
		policy: policy,
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}

	active, err := matcher.NewMultiMatcher(p.cfg.ActiveNames, matcher.Glob)
	if err != nil {
		return nil, fmt.Errorf("active status patterns: %w", err)
	}
	p.active = active

	return p, nil
}

// Policy returns the feed policy the planner was built with.
func (p *Planner) Policy() Policy { return p.policy }

// Config returns the planner configuration.
func (p *Planner) Config() Config { return p.cfg }

func (p *Planner) isStudent(u assets.User) bool {
	if p.studentRule != nil {
		return p.studentRule(u)
	}
	return IsStudent(p.cfg.StudentMarker)(u)
}

// IsActive reports whether a status name belongs to the active set.
func (p *Planner) IsActive(status string) bool {
	return p.active.Match(status)
}

// IsRetired reports whether a status name is the retired status.
func (p *Planner) IsRetired(status string) bool {
	return status == p.cfg.RetiredName
}
