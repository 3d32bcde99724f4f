package services

import (
	"fmt"
	"strings"
	"time"

	"airbnb-monitor/models"
)

// PrintReport writes a run summary to stdout.
func PrintReport(r *models.RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  MONITOR RUN SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Sources\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.Sources) == 0 {
		fmt.Printf("  No sources polled\n")
	} else {
		for _, src := range r.Sources {
			bar := strings.Repeat("█", src.Collected)
			fmt.Printf("  %-12s %s (%d)\n", src.Label, bar, src.Collected)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Results\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Listings collected : \033[1m%d\033[0m\n", r.TotalCollected)
	fmt.Printf("  New listings       : \033[1;32m%d\033[0m\n", r.NewCount)
	fmt.Printf("  Seen-set size      : \033[1m%d\033[0m\n", r.SeenTotal)
	fmt.Printf("  Notification sent  : %v\n", r.Notified)
	fmt.Printf("  Seen-set saved     : %v\n", r.Saved)
	fmt.Printf("  Duration           : %s\n", r.Duration.Round(100*time.Millisecond))

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}
