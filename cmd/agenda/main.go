package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agenda/internal/app"
	"agenda/internal/config"
	"agenda/internal/eventbus"
	"agenda/internal/schedule"
	"agenda/internal/scheduler"
	"agenda/internal/seed"
)

const usage = `usage: agenda [-config path] <command> [args]

commands:
  list    print scheduled events in a window (-from, -to)
  tasks   print task definitions
  add     add or replace a task (-id, -title, -category, -repeat, ...)
  rm      remove a task and its recorded completions: rm <task-id>
  done    complete an event: done -task <id> -at <time> [-force] [-data k=v]
  undo    revert a completion: undo -task <id> -at <time>
  stats   print completion statistics for a window (-from, -to)
  watch   follow config reloads and change notifications until interrupted
`

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./agenda.yaml", "path to config file (yaml or json)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := run(ctx, a, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	switch cmd {
	case "list":
		return cmdList(a, args)
	case "tasks":
		return cmdTasks(a)
	case "add":
		return cmdAdd(ctx, a, args)
	case "rm":
		return cmdRemove(ctx, a, args)
	case "done":
		return cmdDone(ctx, a, args)
	case "undo":
		return cmdUndo(ctx, a, args)
	case "stats":
		return cmdStats(a, args)
	case "watch":
		return cmdWatch(ctx, a)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// parseWhen accepts YYYY-MM-DD, YYYY-MM-DDTHH:MM (local), or RFC 3339.
func parseWhen(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04"} {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD, YYYY-MM-DDTHH:MM, or RFC 3339)", raw)
}

func windowFlags(fs *flag.FlagSet) (from, to *string) {
	from = fs.String("from", "", "window start (default: today)")
	to = fs.String("to", "", "window end (default: from + 7 days)")
	return from, to
}

func resolveWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if fromRaw != "" {
		var err error
		if from, err = parseWhen(fromRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	to := from.AddDate(0, 0, 7)
	if toRaw != "" {
		var err error
		if to, err = parseWhen(toRaw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("window end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return from, to, nil
}

func cmdList(a *app.App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fromRaw, toRaw := windowFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	from, to, err := resolveWindow(*fromRaw, *toRaw)
	if err != nil {
		return err
	}

	events := a.Scheduler().QueryEvents(from, to)
	if len(events) == 0 {
		fmt.Println("no events in window")
		return nil
	}
	for _, ev := range events {
		mark := " "
		if ev.Completed() {
			mark = "x"
		}
		fmt.Printf("[%s] %s  %-12s #%-3d %s\n",
			mark, ev.Occurrence.ScheduledAt.Format("Mon 2006-01-02 15:04"),
			ev.Task.Category, ev.Occurrence.Index, ev.Task.Title)
	}
	return nil
}

func cmdTasks(a *app.App) error {
	tasks := a.Scheduler().Tasks()
	if len(tasks) == 0 {
		fmt.Println("no tasks defined")
		return nil
	}
	for _, t := range tasks {
		end := "-"
		if t.Schedule.EndDate != nil {
			end = t.Schedule.EndDate.Format("2006-01-02")
		}
		fmt.Printf("%-20s %-14s start=%s end=%s  %s\n",
			t.ID, t.Category, t.Schedule.StartDate.Format("2006-01-02"), end, t.Title)
	}
	return nil
}

func cmdAdd(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	entry := config.SeedEntry{}
	fs.StringVar(&entry.ID, "id", "", "task id (generated when empty)")
	fs.StringVar(&entry.Title, "title", "", "task title")
	fs.StringVar(&entry.Category, "category", "task", "questionnaire|task|reminder|measurement")
	fs.StringVar(&entry.Instructions, "instructions", "", "free-form instructions")
	fs.StringVar(&entry.LinkedResource, "link", "", "linked resource id")
	fs.StringVar(&entry.Start, "start", "", "start date YYYY-MM-DD")
	fs.StringVar(&entry.End, "end", "", "end date YYYY-MM-DD (exclusive)")
	fs.StringVar(&entry.Repeat, "repeat", "", "daily@09:00 | weekly:mon@10:30 | monthly:15@08:00 | once@2024-06-01T14:00")
	fs.StringVar(&entry.Policy, "policy", "", "anytime (default) | window:0..180")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := seed.Build(entry)
	if err != nil {
		return err
	}
	t, err = a.Scheduler().CreateOrUpdateTask(ctx, t)
	if err != nil {
		return err
	}
	fmt.Println("task stored:", t.ID)
	return nil
}

func cmdRemove(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <task-id>")
	}
	id := args[0]
	if _, ok := a.Scheduler().TaskByID(id); !ok {
		return fmt.Errorf("unknown task %q", id)
	}
	if err := a.Scheduler().DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Println("task removed:", id)
	return nil
}

// findEvent locates the event of task id scheduled exactly at ts.
func findEvent(a *app.App, id string, ts time.Time) (schedule.Event, error) {
	for _, e := range a.Scheduler().QueryEvents(ts, ts) {
		if e.Task.ID == id && e.Occurrence.ScheduledAt.Equal(ts) {
			return e, nil
		}
	}
	return schedule.Event{}, fmt.Errorf("no event of task %q scheduled at %s", id, ts.Format(time.RFC3339))
}

func cmdDone(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	id := fs.String("task", "", "task id")
	at := fs.String("at", "", "scheduled time of the occurrence")
	force := fs.Bool("force", false, "ignore the completion policy")
	var data kvFlags
	fs.Var(&data, "data", "completion data as key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *at == "" {
		return fmt.Errorf("usage: done -task <id> -at <time> [-force] [-data k=v]")
	}
	ts, err := parseWhen(*at)
	if err != nil {
		return err
	}
	ev, err := findEvent(a, *id, ts)
	if err != nil {
		return err
	}

	out, err := a.Scheduler().CompleteEvent(ctx, ev, scheduler.CompleteOptions{
		Data:         data.Map(),
		IgnorePolicy: *force,
	})
	if err != nil {
		return err
	}
	fmt.Println("completed:", out.ID)
	return nil
}

func cmdUndo(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("undo", flag.ContinueOnError)
	id := fs.String("task", "", "task id")
	at := fs.String("at", "", "scheduled time of the occurrence")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *at == "" {
		return fmt.Errorf("usage: undo -task <id> -at <time>")
	}
	ts, err := parseWhen(*at)
	if err != nil {
		return err
	}
	ev, err := findEvent(a, *id, ts)
	if err != nil {
		return err
	}
	if err := a.Scheduler().UncompleteEvent(ctx, ev); err != nil {
		return err
	}
	fmt.Println("reverted:", ev.OutcomeID())
	return nil
}

func cmdStats(a *app.App, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fromRaw, toRaw := windowFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	from, to, err := resolveWindow(*fromRaw, *toRaw)
	if err != nil {
		return err
	}
	st := a.Scheduler().CompletionStats(from, to)
	fmt.Printf("events: %d  completed: %d  pending: %d  rate: %.1f%%\n",
		st.Total, st.Completed, st.Pending, st.CompletionRate)
	return nil
}

func cmdWatch(ctx context.Context, a *app.App) error {
	unsub := a.Scheduler().Subscribe(func(e eventbus.Event) {
		ch, _ := e.Data.(scheduler.Change)
		line := fmt.Sprintf("%s  %-18s task=%s", e.Time.Format("15:04:05"), e.Type, ch.TaskID)
		if ch.OutcomeID != "" {
			line += "  outcome=" + ch.OutcomeID
		}
		fmt.Println(line)
	})
	defer unsub()

	fmt.Println("watching; press ctrl-c to stop")
	return a.Watch(ctx)
}
