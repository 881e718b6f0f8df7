package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lazypower/reminderparrot/internal/engine"
	"github.com/lazypower/reminderparrot/internal/parrot"
)

func printAward(a *engine.AwardResult) {
	if a == nil || !a.Change.LeveledUp {
		return
	}
	fmt.Printf("The parrot reached level %d!\n", a.Change.NewLevel)
	for _, s := range a.Unlocked {
		fmt.Printf("  new skill: %s (%s)\n", s.Name, s.Description)
	}
}

// resolveReminder expands a unique id prefix to a full reminder id.
func resolveReminder(ctx context.Context, eng *engine.Engine, prefix string) (string, error) {
	list, err := eng.ListReminders(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, r := range list {
		if strings.HasPrefix(strings.ToLower(r.ID), strings.ToLower(prefix)) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("reminder %s: %w", prefix, parrot.ErrNotFound)
	}
	return match, nil
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the parrot",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	p, err := eng.Parrot(ctx)
	if err != nil {
		return err
	}
	list, err := eng.ListReminders(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("## Parrot (level %d)\n\n", p.Level)
	fmt.Printf("  experience:  %d / %d\n", p.CurrentExperience, p.MaxExperience)
	fmt.Printf("  memory:      %d / %d reminders, %d hours each\n", len(list), p.Stats.MemorizedWords, p.Stats.MemoryTimeHours)
	fmt.Printf("  emotions:    %d\n", p.Stats.EmotionalRange)
	fmt.Printf("  social:      %d\n", p.Stats.SocialConnections)
	fmt.Printf("  learning:    x%.2f\n", p.Stats.LearningSpeed)
	fmt.Printf("  personality: cheer %d, curiosity %d, social %d, wisdom %d\n",
		p.Personality.Cheerfulness, p.Personality.Curiosity, p.Personality.Sociability, p.Personality.Wisdom)
	fmt.Printf("  hatched:     %s\n", humanize.Time(p.CreatedAt))
	if len(p.UnlockedSkills) > 0 {
		fmt.Printf("  skills:      %s\n", strings.Join(p.UnlockedSkills, ", "))
	}
	return nil
}

// --- remember command ---

var rememberCmd = &cobra.Command{
	Use:   "remember [text]",
	Short: "Teach the parrot a reminder",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemember,
}

func runRemember(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := eng.CreateReminder(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Printf("Remembered %s, forgotten %s\n", res.Reminder.ID, humanize.Time(res.Reminder.ForgetAt))
	printAward(res.Award)
	return nil
}

// --- list command ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List what the parrot remembers",
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	list, err := eng.ListReminders(context.Background())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("The parrot remembers nothing.")
		return nil
	}

	now := time.Now()
	for _, r := range list {
		mark := " "
		if r.IsCompleted {
			mark = "x"
		}
		when := "forgets " + humanize.Time(r.ForgetAt)
		if parrot.IsExpired(r, now) {
			when = "forgotten, awaiting sweep"
		}
		fmt.Printf("[%s] %s  %s  (%s)\n", mark, r.ID, r.Text, when)
	}
	return nil
}

// --- done / undo commands ---

var doneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a reminder completed",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setCompleted(args[0], true) },
}

var undoCmd = &cobra.Command{
	Use:   "undo [id]",
	Short: "Mark a reminder not completed",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setCompleted(args[0], false) },
}

func setCompleted(prefix string, completed bool) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	id, err := resolveReminder(ctx, eng, prefix)
	if err != nil {
		return err
	}
	res, err := eng.SetCompleted(ctx, id, completed)
	if err != nil {
		return err
	}
	if completed {
		fmt.Printf("Completed %s\n", res.Reminder.Text)
	} else {
		fmt.Printf("Reopened %s\n", res.Reminder.Text)
	}
	printAward(res.Award)
	return nil
}

// --- edit command ---

var editCmd = &cobra.Command{
	Use:   "edit [id] [text]",
	Short: "Change a reminder's text",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	id, err := resolveReminder(ctx, eng, args[0])
	if err != nil {
		return err
	}
	r, err := eng.UpdateReminderText(ctx, id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s: %s\n", r.ID, r.Text)
	return nil
}

// --- forget command ---

var forgetAll bool

var forgetCmd = &cobra.Command{
	Use:   "forget [id]",
	Short: "Delete a reminder, or all of them with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runForget,
}

func init() {
	forgetCmd.Flags().BoolVar(&forgetAll, "all", false, "Forget every reminder")
}

func runForget(cmd *cobra.Command, args []string) error {
	if forgetAll == (len(args) == 1) {
		return fmt.Errorf("give a reminder id or --all")
	}

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if forgetAll {
		n, err := eng.ForgetAll(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Forgot %d reminders\n", n)
		return nil
	}

	id, err := resolveReminder(ctx, eng, args[0])
	if err != nil {
		return err
	}
	if err := eng.DeleteReminder(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Forgot %s\n", id)
	return nil
}

// --- skills command ---

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "Show the skill tree",
	RunE:  runSkills,
}

func runSkills(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	skills, err := eng.Skills(context.Background())
	if err != nil {
		return err
	}
	for _, s := range skills {
		line := fmt.Sprintf("  %-9s L%-3d %s", s.Status, s.RequiredLevel, s.Name)
		if len(s.Prerequisites) > 0 {
			line += "  (needs " + strings.Join(s.Prerequisites, ", ") + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// --- sweep command ---

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Forget expired reminders now",
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := eng.Sweep(context.Background(), eng.Now())
	if err != nil {
		return err
	}
	for _, r := range res.Forgotten {
		fmt.Printf("Forgot: %s\n", r.Text)
	}
	fmt.Printf("%d expired, %d completed purged\n", res.Deleted, res.Purged)
	return nil
}
