package matching

import (
	"ridematcher/internal/models"
	"ridematcher/internal/schedule"
)

// BuildCandidates filters scheduled runs down to those arriving inside the
// intent's window, with the intent tolerance as extra slack on both bounds.
// The input order is preserved, so candidates stay chronological when the
// lookup returns them that way. Pure: no side effects, empty in, empty out.
func BuildCandidates(intent models.UserIntent, runs []schedule.Run) []models.CandidateThread {
	slack := intent.Tolerance()
	earliest := intent.WindowStart.Add(-slack)
	latest := intent.WindowEnd.Add(slack)
	loc := intent.WindowStart.Location()

	candidates := make([]models.CandidateThread, 0, len(runs))
	for _, run := range runs {
		arrival := run.Arrival.In(loc)
		if arrival.Before(earliest) || arrival.After(latest) {
			continue
		}
		candidates = append(candidates, models.CandidateThread{
			ThreadID:      run.ThreadID,
			DepartureTime: run.Departure.In(loc),
			ArrivalTime:   arrival,
			FromStopID:    run.FromID,
			ToStopID:      run.ToID,
			FromStopLabel: run.FromLabel,
			ToStopLabel:   run.ToLabel,
		})
	}
	return candidates
}
