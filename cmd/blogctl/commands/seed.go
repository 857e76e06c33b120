package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/seed"
	"github.com/blogging-tool/internal/service"
	"github.com/spf13/cobra"
)

var seedOpts = seed.DefaultOptions()

// seedCmd fills the database with demo content
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with demo data",
	Long: `Create demo authors, articles, comments and likes for local development.
Every seeded account shares the same password.

Examples:
  blogctl seed                        # Default data set
  blogctl seed --authors 10 --seed 42 # Larger, reproducible data set`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&seedOpts.Authors, "authors", seedOpts.Authors, "Number of authors")
	seedCmd.Flags().IntVar(&seedOpts.ArticlesPerAuthor, "articles", seedOpts.ArticlesPerAuthor, "Published articles per author")
	seedCmd.Flags().IntVar(&seedOpts.DraftsPerAuthor, "drafts", seedOpts.DraftsPerAuthor, "Drafts per author")
	seedCmd.Flags().IntVar(&seedOpts.CommentsPerArticle, "comments", seedOpts.CommentsPerArticle, "Comments per published article")
	seedCmd.Flags().StringVar(&seedOpts.Password, "password", seedOpts.Password, "Password for every seeded account")
	seedCmd.Flags().Int64Var(&seedOpts.Seed, "seed", 0, "Random seed, 0 picks one")
}

func runSeed(cmd *cobra.Command) error {
	db, log, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return err
	}

	services := service.NewServices(repository.New(db), log)
	summary, err := seed.New(services, seedOpts, log).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Authors\t%d\n", summary.Authors)
	fmt.Fprintf(w, "Published\t%d\n", summary.Published)
	fmt.Fprintf(w, "Drafts\t%d\n", summary.Drafts)
	fmt.Fprintf(w, "Comments\t%d\n", summary.Comments)
	fmt.Fprintf(w, "Likes\t%d\n", summary.Likes)
	fmt.Fprintf(w, "Password\t%s\n", seedOpts.Password)
	return w.Flush()
}
