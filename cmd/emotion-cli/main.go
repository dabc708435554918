package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikitakharat907-ai/emotiondetector/internal/domain"
	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
)

var (
	jsonOutput   bool
	noSpellcheck bool
	profilesPath string
	serverURL    string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "emotion-cli",
	Short:         "Classify text into a basic emotion",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// classifyCmd scores its arguments, or every stdin line when none are given.
var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify text locally or against a running server",
	Long: `Classify text by counting emotion keywords.

Without arguments every non-empty line read from stdin is classified.
With --server the text is sent to POST /v1/emotion/classify instead.`,
	RunE: runClassify,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List emotion profiles and their keywords",
	RunE:  runProfiles,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilesPath, "profiles", "", "YAML profile table (default: built-in table)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	classifyCmd.Flags().BoolVar(&noSpellcheck, "no-spellcheck", false, "disable spelling correction")
	classifyCmd.Flags().StringVar(&serverURL, "server", "", "emotion server base URL, e.g. http://localhost:9012")
	classifyCmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "request timeout when --server is set")

	rootCmd.AddCommand(classifyCmd, profilesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadTable() (*emotion.Table, error) {
	if profilesPath == "" {
		return emotion.DefaultTable(), nil
	}
	return emotion.LoadTable(profilesPath)
}

func runClassify(cmd *cobra.Command, args []string) error {
	texts := []string{strings.Join(args, " ")}
	if len(args) == 0 {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
		texts = lines
	}

	classify, err := newClassifyFunc(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, text := range texts {
		resp, err := classify(text)
		if err != nil {
			return err
		}
		if err := printResult(out, text, resp); err != nil {
			return err
		}
	}
	return nil
}

func newClassifyFunc(ctx context.Context) (func(string) (domain.ClassifyResponse, error), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if serverURL != "" {
		client := emotion.NewClient(serverURL, timeout)
		return func(text string) (domain.ClassifyResponse, error) {
			r, err := client.Classify(ctx, text)
			if err != nil {
				return domain.ClassifyResponse{}, err
			}
			return domain.NewClassifyResponse("", r.Result, r.Chart, r.LatencyMS), nil
		}, nil
	}

	table, err := loadTable()
	if err != nil {
		return nil, err
	}
	normalizer := emotion.NewNormalizer(nil)
	if !noSpellcheck {
		normalizer.Corrector = emotion.NewSpeller(table)
	}
	classifier := emotion.NewClassifier(table, normalizer)
	return func(text string) (domain.ClassifyResponse, error) {
		start := time.Now()
		r := classifier.Classify(text)
		return domain.NewClassifyResponse("", r, classifier.Chart(r), domain.LatencyMillis(time.Since(start))), nil
	}, nil
}

func printResult(w io.Writer, text string, resp domain.ClassifyResponse) error {
	if jsonOutput {
		return json.NewEncoder(w).Encode(struct {
			Text string `json:"text"`
			domain.ClassifyResponse
		}{Text: text, ClassifyResponse: resp})
	}
	parts := make([]string, 0, len(resp.Scores))
	for _, s := range resp.Scores {
		parts = append(parts, fmt.Sprintf("%s=%d", s.Emotion, s.Count))
	}
	_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", resp.Label, strings.Join(parts, " "), text)
	return err
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	table, err := loadTable()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return json.NewEncoder(out).Encode(domain.ProfilesResponse{
			Schema:   emotion.Schema,
			Engine:   emotion.Engine,
			Profiles: table.Profiles(),
		})
	}
	for _, p := range table.Profiles() {
		if _, err := fmt.Fprintf(out, "%s %s\t%s\t%s\n", p.Name, p.Glyph, p.Color, strings.Join(p.Keywords, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return out, nil
}
