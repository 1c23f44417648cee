package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/raaihank/medtag/internal/entity"
	"github.com/raaihank/medtag/internal/logger"
)

func main() {
	var (
		text = flag.String("text", "", "Analyze a single text and exit")
	)
	flag.Parse()

	log := logger.NewNop()

	extractor, err := entity.New(entity.DefaultVocabulary(), log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize extractor: %v\n", err)
		os.Exit(1)
	}

	if *text != "" {
		printAnalysis(extractor, *text)
		return
	}

	printBanner()
	runLoop(extractor)
}

func printBanner() {
	fmt.Println("medtag - medical entity extraction")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Recognized entity types:")
	for _, cat := range entity.Categories() {
		fmt.Printf("  %-22s %s\n", cat, cat.Description())
	}
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("Enter text to analyze, or 'quit' to exit.")
	fmt.Println()
}

func runLoop(extractor *entity.Extractor) {
	scanner := bufio.NewScanner(os.Stdin)
	// Clinical notes can run well past the default token size
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return
		}

		printAnalysis(extractor, input)
	}
}

func printAnalysis(extractor *entity.Extractor, text string) {
	spans := extractor.Extract(text)

	if len(spans) == 0 {
		fmt.Println("No entities found.")
		fmt.Println()
		return
	}

	fmt.Printf("Found %d entities:\n", len(spans))
	for i, s := range spans {
		fmt.Printf("  %d. %q  %s  [%d:%d]\n", i+1, s.Text, s.Category, s.Start, s.End)
	}

	fmt.Println("\nAnnotated text:")
	fmt.Printf("  %s\n", extractor.Annotate(text))

	fmt.Println("\nSummary:")
	for _, group := range extractor.Summarize(text) {
		fmt.Printf("  %s: %s\n", group.Category, strings.Join(group.Terms, ", "))
	}
	fmt.Println()
}
