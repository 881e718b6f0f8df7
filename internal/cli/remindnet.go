package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// --- feed command ---

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show RemindNet posts",
	RunE:  runFeed,
}

func runFeed(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	posts, err := eng.Feed(context.Background())
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Println("RemindNet is quiet.")
		return nil
	}
	for _, p := range posts {
		fmt.Printf("%s  %s: %s\n", p.ID, p.UserName, p.ReminderText)
		fmt.Printf("    %s likes, posted %s, forgotten %s\n",
			humanize.Comma(int64(p.LikesCount)), humanize.Time(p.CreatedAt), humanize.Time(p.ForgetAt))
	}
	return nil
}

// --- share command ---

var shareAnonymous bool

var shareCmd = &cobra.Command{
	Use:   "share [reminder-id]",
	Short: "Share a reminder on RemindNet",
	Args:  cobra.ExactArgs(1),
	RunE:  runShare,
}

func init() {
	shareCmd.Flags().BoolVar(&shareAnonymous, "anonymous", false, "Share without your name")
}

func runShare(cmd *cobra.Command, args []string) error {
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
	post, err := eng.Share(ctx, id, currentUser(), shareAnonymous)
	if err != nil {
		return err
	}
	fmt.Printf("Shared as post %s\n", post.ID)
	return nil
}

// --- import command ---

var importCmd = &cobra.Command{
	Use:   "import [post-id]",
	Short: "Teach the parrot a RemindNet post",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := eng.Import(context.Background(), args[0], currentUser())
	if err != nil {
		return err
	}
	fmt.Printf("Learned %q as %s\n", res.Reminder.Text, res.Reminder.ID)
	printAward(res.Award)
	return nil
}

// --- like command ---

var likeCmd = &cobra.Command{
	Use:   "like [post-id]",
	Short: "Like a RemindNet post",
	Args:  cobra.ExactArgs(1),
	RunE:  runLike,
}

func runLike(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := eng.Like(context.Background(), args[0], currentUser())
	if err != nil {
		return err
	}
	fmt.Printf("%s likes\n", humanize.Comma(int64(n)))
	return nil
}

// --- unshare command ---

var unshareCmd = &cobra.Command{
	Use:   "unshare [post-id]",
	Short: "Remove your RemindNet post",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnshare,
}

func runUnshare(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := eng.DeletePost(context.Background(), args[0], currentUser()); err != nil {
		return err
	}
	fmt.Println("Post removed")
	return nil
}
