package main

import (
	"fmt"
	"log/slog"

	"github.com/verte-zerg/sortbench/internal/tournament"
)

// plainProgress logs one line per finished run.
func plainProgress(log *slog.Logger) tournament.ProgressListener {
	return func(ev tournament.ProgressEvent) {
		switch ev.EventType {
		case tournament.EventTournamentStart:
			log.Info("tournament started", "runs", ev.Total)
		case tournament.EventRunStart:
			log.Debug("run started", "run", ev.RunID, "a", ev.A, "b", ev.B, "shape", ev.Shape, "size", ev.Size)
		case tournament.EventRunComplete:
			log.Info("run complete",
				"progress", fmt.Sprintf("%.1f%%", ev.Percent()),
				"run", ev.RunID,
				"a", ev.A,
				"b", ev.B,
				"shape", ev.Shape,
				"winner", winnerName(ev))
		case tournament.EventTournamentComplete:
			log.Info("tournament complete", "runs", ev.Completed-ev.Skipped, "skipped", ev.Skipped, "failures", ev.Failures)
		}
	}
}

func winnerName(ev tournament.ProgressEvent) string {
	switch {
	case ev.WonA:
		return ev.A
	case ev.WonB:
		return ev.B
	default:
		return "tie"
	}
}
