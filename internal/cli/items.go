package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lazypower/cadence/internal/store"
)

// --- add command ---

var addItem store.Item

var addCmd = &cobra.Command{
	Use:   "add [user] [content...]",
	Short: "Add an item",
	Example: `  cadence add me "Morning run" --type routine --frequency weekdays --time 30m
  cadence add me "File taxes" --priority urgent --due "end of month"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVarP(&addItem.Type, "type", "t", store.TypeTask, "Item type (goal, routine, task, event, note)")
	f.StringVar(&addItem.ContentShort, "short", "", "Short label")
	f.StringVarP(&addItem.Priority, "priority", "p", "", "Priority text")
	f.StringVarP(&addItem.Due, "due", "d", "", "Due date text")
	f.StringVarP(&addItem.Frequency, "frequency", "f", "", "Frequency text")
	f.StringVar(&addItem.RequiredTime, "time", "", "Required time text")
	f.StringVar(&addItem.Status, "status", "", "Status")
	f.StringVar(&addItem.Stage, "stage", "", "Stage")
	f.IntVar(&addItem.PerformanceStreak, "streak", 0, "Current performance streak")
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	it := addItem
	it.UserID = args[0]
	it.Content = strings.Join(args[1:], " ")
	if err := db.CreateItem(&it); err != nil {
		return err
	}

	notifyServer(cmd, it.UserID)
	fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", it.Type, it.ID)
	return nil
}

// --- archive command ---

var archiveCmd = &cobra.Command{
	Use:   "archive [user] [item-id...]",
	Short: "Archive items so they leave the feed",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runArchive,
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	userID := args[0]
	archived := 0
	for _, id := range args[1:] {
		if err := db.ArchiveItem(userID, id); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			continue
		}
		archived++
	}
	if archived > 0 {
		notifyServer(cmd, userID)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "archived %d of %d items\n", archived, len(args)-1)
	if archived < len(args)-1 {
		return fmt.Errorf("%d items not archived", len(args)-1-archived)
	}
	return nil
}

// --- import command ---

var importUser string

var importCmd = &cobra.Command{
	Use:   "import [file.yaml]",
	Short: "Import items from a YAML file",
	Long: `Import items from a YAML file of the form:

  user_id: me
  items:
    - type: routine
      content: Evening journal
      frequency: daily
    - type: task
      content: Renew passport
      due: next month
      priority: high

Items carrying their own user_id keep it.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importUser, "user", "u", "", "User for items without one (overrides the file's user_id)")
}

type importFile struct {
	UserID string       `yaml:"user_id"`
	Items  []store.Item `yaml:"items"`
}

// readImport decodes an import file and assigns users. Every item must end
// up with a user.
func readImport(r io.Reader, defaultUser string) ([]store.Item, error) {
	var f importFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse import file: %w", err)
	}
	if defaultUser == "" {
		defaultUser = f.UserID
	}
	for i := range f.Items {
		if f.Items[i].UserID == "" {
			f.Items[i].UserID = defaultUser
		}
		if f.Items[i].UserID == "" {
			return nil, fmt.Errorf("item %d (%q): no user_id", i+1, f.Items[i].Content)
		}
		if f.Items[i].Type == "" {
			f.Items[i].Type = store.TypeTask
		}
	}
	return f.Items, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	items, err := readImport(file, importUser)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	users := map[string]bool{}
	for i := range items {
		if err := db.CreateItem(&items[i]); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		users[items[i].UserID] = true
	}
	for u := range users {
		notifyServer(cmd, u)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d items for %d users\n", len(items), len(users))
	return nil
}
