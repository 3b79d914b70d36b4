// Command gen-activity produces synthetic activity events for exercising
// the aggregation pipeline, plus an optional matching roster file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/okian/cadence/internal/domain/model"
)

const dateLayout = "2006-01-02"

var roles = []string{"backend", "frontend", "devops", "manager"}

type user struct {
	id        string
	role      string
	intensity float64 // scales weekly volume
	quietFrom int     // week index the user goes silent at, -1 for never
}

func main() {
	var (
		numUsers   = flag.Int("users", 20, "number of synthetic users")
		numWeeks   = flag.Int("weeks", 12, "number of weeks to generate")
		startArg   = flag.String("start", "2025-01-06", "first week start (YYYY-MM-DD)")
		seed       = flag.Int64("seed", 1, "PRNG seed")
		outPath    = flag.String("out", "-", "JSONL output file, - for stdout")
		rosterPath = flag.String("roster", "", "optional roster YAML to write alongside the events")
	)
	flag.Parse()

	start, err := time.ParseInLocation(dateLayout, *startArg, time.UTC)
	if err != nil {
		os.Stderr.WriteString("invalid -start value: " + err.Error() + "\n")
		os.Exit(1)
	}
	start = model.WeekStart(start, time.Monday)

	rng := rand.New(rand.NewSource(*seed))

	users := make([]user, *numUsers)
	for i := range users {
		users[i] = user{
			id:        fmt.Sprintf("user-%03d", i+1),
			role:      roles[i%len(roles)],
			intensity: 0.4 + rng.Float64(),
			quietFrom: -1,
		}
	}
	// A couple of users go silent near the end so downstream alerting has
	// something to find.
	if *numUsers >= 4 && *numWeeks > 3 {
		users[1].quietFrom = *numWeeks - 2
		users[3].quietFrom = *numWeeks - 3
	}

	var out io.Writer = os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			os.Stderr.WriteString("create output: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	enc := json.NewEncoder(out)
	for w := 0; w < *numWeeks; w++ {
		week := model.AddWeeks(start, w)
		for _, u := range users {
			if u.quietFrom >= 0 && w >= u.quietFrom {
				continue
			}
			for _, e := range weekEvents(rng, u, week) {
				if err := enc.Encode(e); err != nil {
					os.Stderr.WriteString("write event: " + err.Error() + "\n")
					os.Exit(1)
				}
			}
		}
	}

	if *rosterPath != "" {
		if err := writeRoster(*rosterPath, users); err != nil {
			os.Stderr.WriteString("write roster: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
}

// weekEvents rolls one user's activity for one week.
func weekEvents(rng *rand.Rand, u user, week time.Time) []model.ActivityEvent {
	var events []model.ActivityEvent

	add := func(source, typ string, meta map[string]float64) {
		events = append(events, model.ActivityEvent{
			EventID:    uuid.NewString(),
			UserID:     u.id,
			Source:     source,
			Type:       typ,
			OccurredAt: week.Add(time.Duration(rng.Intn(5*24)) * time.Hour),
			Meta:       meta,
		})
	}

	count := func(base int) int {
		return int(float64(base) * u.intensity * (0.6 + 0.8*rng.Float64()))
	}

	for i := 0; i < count(4); i++ {
		add(model.SourceJira, model.TypeTicketCompleted,
			map[string]float64{model.MetaStoryPoints: float64(1 + rng.Intn(5))})
	}
	for i := 0; i < count(3); i++ {
		add(model.SourceGitHub, model.TypePRMerged, nil)
	}
	for i := 0; i < count(4); i++ {
		add(model.SourceGitHub, model.TypePRReviewed, nil)
	}
	if n := count(15); n > 0 {
		add(model.SourceGitHub, model.TypeCommits,
			map[string]float64{model.MetaCommitCount: float64(n)})
	}
	for i := 0; i < count(2); i++ {
		add(model.SourceDocs, model.TypeDocCreated, nil)
	}
	if hours := float64(count(8)); hours > 0 {
		add(model.SourceCalendar, model.TypeMeeting,
			map[string]float64{model.MetaDurationHours: hours})
	}

	return events
}

func writeRoster(path string, users []user) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintln(f, "users:"); err != nil {
		return err
	}
	for _, u := range users {
		if _, err := fmt.Fprintf(f, "  - id: %s\n    role: %s\n", u.id, u.role); err != nil {
			return err
		}
	}
	return nil
}
