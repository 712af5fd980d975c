package objective

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// requiredPeriods rewards placing a class on one of its required
// slots — the hard RequiredPeriods constraint already guarantees this
// whenever the class has any, so this term mostly rewards classes
// whose required-slot restriction was relaxed away from elsewhere.
type requiredPeriods struct{ base }

func (o *requiredPeriods) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	var n float64
	for _, a := range assignments {
		if c, ok := ctx.Classes[a.ClassID]; ok && c.IsRequiredSlot(a.TimeSlot()) {
			n++
		}
	}
	return o.Weight() * n
}

type preferredPeriods struct{ base }

func (o *preferredPeriods) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	var total float64
	for _, a := range assignments {
		c, ok := ctx.Classes[a.ClassID]
		if !ok || !c.PrefersSlot(a.TimeSlot()) {
			continue
		}
		total += o.Weight() * c.WeeklySchedule.PreferenceWeight
	}
	return total
}

type avoidPeriods struct{ base }

func (o *avoidPeriods) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	var total float64
	for _, a := range assignments {
		c, ok := ctx.Classes[a.ClassID]
		if !ok || !c.AvoidsSlot(a.TimeSlot()) {
			continue
		}
		total += o.Weight() * c.WeeklySchedule.AvoidanceWeight
	}
	return total
}

// earlierDates gives every assignment a small bonus that decays the
// further its date sits from the start of the window, nudging the
// solver toward front-loading the schedule.
type earlierDates struct{ base }

func (o *earlierDates) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	var total float64
	for _, a := range assignments {
		total += o.Weight() - 0.1*ctx.daysFromStart(a)
	}
	return total
}

// dayUsage penalizes weekdays within a non-final week that end up
// with no classes at all, spreading load across the week instead of
// bunching it onto a few days.
type dayUsage struct{ base }

func (o *dayUsage) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	perDate := byDate(assignments)
	penaltyPerDay := o.Weight() / 2
	var total float64
	for week := 0; week < ctx.LastWeek; week++ {
		for _, raw := range ctx.Grid.DatesInWeek(week) {
			key := time.Unix(raw, 0).UTC().Format("2006-01-02")
			if len(perDate[key]) == 0 {
				total -= penaltyPerDay
			}
		}
	}
	return total
}

// finalWeekCompression pulls classes in the final week toward its
// earliest days and penalizes empty days within it, since the final
// week cannot borrow slack from a following week.
type finalWeekCompression struct{ base }

func (o *finalWeekCompression) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	dayCoef := o.Weight() * 200.0 / 3000.0
	gapCoef := o.Weight() * 500.0 / 3000.0

	dates := ctx.Grid.DatesInWeek(ctx.LastWeek)
	indexOf := make(map[string]int, len(dates))
	for i, raw := range dates {
		indexOf[time.Unix(raw, 0).UTC().Format("2006-01-02")] = i
	}

	perDate := byDate(assignments)
	var total float64
	for _, a := range assignments {
		if ctx.weekOf(a) != ctx.LastWeek {
			continue
		}
		idx := indexOf[dateKey(a)]
		total -= dayCoef * float64(idx+1)
	}
	for _, raw := range dates {
		key := time.Unix(raw, 0).UTC().Format("2006-01-02")
		if len(perDate[key]) == 0 {
			total -= gapCoef
		}
	}
	return total
}

// dailyBalance penalizes uneven class counts across the used days of
// a non-final week.
type dailyBalance struct{ base }

func (o *dailyBalance) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	coef := o.Weight() / 15.0
	weeks := byWeek(assignments, ctx)
	var total float64
	for week, in := range weeks {
		if week == ctx.LastWeek {
			continue
		}
		counts := lo.Values(lo.MapValues(byDate(in), func(v []schedule.Assignment, _ string) int { return len(v) }))
		for i := 0; i < len(counts); i++ {
			for j := i + 1; j < len(counts); j++ {
				total -= coef * absFloat(float64(counts[i]-counts[j]))
			}
		}
	}
	return total
}

// distribution balances load both across weeks (toward an even
// per-week share of the total class count) and across periods
// (toward an even per-period share across the whole window).
type distribution struct{ base }

func (o *distribution) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	weekCoef := o.Weight() * 0.75
	periodCoef := o.Weight() * 0.05

	weeks := ctx.LastWeek + 1
	total := float64(len(assignments))
	target := total * 100 / float64(weeks)

	byWk := byWeek(assignments, ctx)
	var score float64
	for w := 0; w <= ctx.LastWeek; w++ {
		sum := float64(len(byWk[w]))
		score -= weekCoef * absFloat(sum*100-target)
	}

	periodCounts := make(map[int]int)
	for _, a := range assignments {
		periodCounts[a.Period]++
	}
	periods := lo.Keys(periodCounts)
	sort.Ints(periods)
	for i := 0; i < len(periods); i++ {
		for j := i + 1; j < len(periods); j++ {
			diff := periodCounts[periods[i]] - periodCounts[periods[j]]
			score -= periodCoef * absFloat(float64(diff))
		}
	}
	return score
}

// gradeGrouping rewards back-to-back periods on the same day being
// occupied by classes of similar grade, so a teacher isn't bounced
// between unrelated grade levels period to period.
type gradeGrouping struct{ base }

func (o *gradeGrouping) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	coef := o.Weight() / 12.0
	var total float64
	for _, pair := range adjacentPairs(assignments) {
		c1, ok1 := ctx.Classes[pair[0].ClassID]
		c2, ok2 := ctx.Classes[pair[1].ClassID]
		if !ok1 || !ok2 {
			continue
		}
		sim := gradeSimilarity(c1.ResolvedGradeGroup(), c2.ResolvedGradeGroup())
		total += coef * sim * 100
	}
	return total
}

// consecutiveSoft penalizes back-to-back periods when the global
// consecutive-classes rule is soft rather than hard (the hard case is
// enforced instead by pkg/constraint's ConsecutiveClassesConstraint).
type consecutiveSoft struct{ base }

func (o *consecutiveSoft) Score(assignments []schedule.Assignment, ctx *Context) float64 {
	if ctx.Request.Constraints.ConsecutiveClassesRule != schedule.ConsecutiveSoft {
		return 0
	}
	return -o.Weight() * float64(len(adjacentPairs(assignments)))
}
