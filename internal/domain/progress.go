package domain

import (
	"math"
	"regexp"
	"sort"
	"strconv"
)

// Progress returns the lead's completion percentage: the share of stages
// marked done, rounded to the nearest integer. A lead with no stages has
// zero progress.
func Progress(l *Lead) int {
	if len(l.Stages) == 0 {
		return 0
	}
	done := 0
	for _, s := range l.Stages {
		if s.Status == StageDone {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(l.Stages))))
}

// ProgressBand partitions leads by completion percentage for list filtering.
// The three bands are mutually exclusive and cover every lead.
type ProgressBand string

const (
	BandHigh ProgressBand = "high" // >= 50%
	BandMid  ProgressBand = "mid"  // 10-49%
	BandLow  ProgressBand = "low"  // < 10%
)

// Valid reports whether the band is one of the known bands.
func (b ProgressBand) Valid() bool {
	return b == BandHigh || b == BandMid || b == BandLow
}

// BandOf returns the band a progress percentage falls in.
func BandOf(progress int) ProgressBand {
	switch {
	case progress >= 50:
		return BandHigh
	case progress >= 10:
		return BandMid
	default:
		return BandLow
	}
}

// NoMilestoneLabel is the group label for stages without a milestone.
const NoMilestoneLabel = "No Milestone"

// MilestoneGroup is a set of stages sharing a milestone label, with the
// completion percentage scoped to that group.
type MilestoneGroup struct {
	Label    string  `json:"label"`
	Stages   []Stage `json:"stages"`
	Progress int     `json:"progress"`
}

var milestoneNumberRe = regexp.MustCompile(`^Milestone\s+(\d+)$`)

// milestoneSortKey parses the numeric suffix of a "Milestone N" label.
func milestoneSortKey(label string) (int, bool) {
	m := milestoneNumberRe.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// MilestoneGroups partitions a lead's stages by milestone label. Every
// stage lands in exactly one group; stages without a milestone go into the
// "No Milestone" group. Groups are ordered: numeric "Milestone N" labels
// ascending, then any other labels alphabetically, with "No Milestone"
// always last. Within a group stages keep their pipeline order.
func MilestoneGroups(l *Lead) []MilestoneGroup {
	byLabel := make(map[string][]Stage)
	labels := make([]string, 0)
	for _, s := range l.Stages {
		label := s.Milestone
		if label == "" {
			label = NoMilestoneLabel
		}
		if _, seen := byLabel[label]; !seen {
			labels = append(labels, label)
		}
		byLabel[label] = append(byLabel[label], s.Clone())
	}

	sort.SliceStable(labels, func(i, j int) bool {
		a, b := labels[i], labels[j]
		if a == NoMilestoneLabel {
			return false
		}
		if b == NoMilestoneLabel {
			return true
		}
		na, aok := milestoneSortKey(a)
		nb, bok := milestoneSortKey(b)
		switch {
		case aok && bok:
			return na < nb
		case aok:
			return true
		case bok:
			return false
		default:
			return a < b
		}
	})

	groups := make([]MilestoneGroup, 0, len(labels))
	for _, label := range labels {
		stages := byLabel[label]
		sort.SliceStable(stages, func(i, j int) bool {
			return stages[i].Order < stages[j].Order
		})
		groups = append(groups, MilestoneGroup{
			Label:    label,
			Stages:   stages,
			Progress: stageProgress(stages),
		})
	}
	return groups
}

func stageProgress(stages []Stage) int {
	if len(stages) == 0 {
		return 0
	}
	done := 0
	for _, s := range stages {
		if s.Status == StageDone {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(stages))))
}
