package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

type FileTestResult struct {
	File    string     `json:"file"`
	Status  string     `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string     `json:"message,omitempty"`
	Args    []string   `json:"args,omitempty"`
	Diff    string     `json:"diff,omitempty"`
	Golden  *Execution `json:"golden,omitempty"`
	Result  *Execution `json:"result,omitempty"`
}

type TestSuiteResults map[string]*FileTestResult

var (
	gwcPath    = flag.String("gwc", "./gwc", "Path to the gwc binary to test.")
	gwcArgs    = flag.String("gwc-args", "", "Extra arguments for every gwc run (space-separated).")
	testFiles  = flag.String("test-files", "tests/*.tree tests/*.yaml", "Glob pattern(s) for fixtures to test (space-separated).")
	skipFiles  = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	timeout    = flag.Duration("timeout", 5*time.Second, "Timeout for each gwc run.")
	jobs       = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose    = flag.Bool("v", false, "Enable verbose logging.")
	update     = flag.Bool("update", false, "Write the current output as the golden file of every fixture.")
	goldenDir  = flag.String("dir", "", "Directory to store/read golden files (defaults to the fixture's dir).")
)

// argsDirective lets a fixture carry its own gwc flags: `; gwc: -Wall --format yaml`
const argsDirective = "gwc:"

var (
	cRed    = color.New(color.FgHiRed).SprintFunc()
	cYellow = color.New(color.FgHiYellow).SprintFunc()
	cGreen  = color.New(color.FgHiGreen).SprintFunc()
	cCyan   = color.New(color.FgHiCyan).SprintFunc()
	cBold   = color.New(color.Bold).SprintFunc()
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	setupInterruptHandler()

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s Invalid glob pattern(s): %v\n", cRed("[ERROR]"), err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}
	if _, err := os.Stat(*gwcPath); err != nil {
		if _, lookErr := exec.LookPath(*gwcPath); lookErr != nil {
			log.Fatalf("%s gwc binary '%s' not found: %v\n", cRed("[ERROR]"), *gwcPath, err)
		}
	}

	results := runSuite(files)
	printSummary(results)
	resultsMap := writeJSONReport(results)
	if hasFailures(resultsMap) {
		os.Exit(1)
	}
}

func setupInterruptHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Printf("\n%s Test run cancelled.\n", cYellow("[INTERRUPT]"))
		os.Exit(1)
	}()
}

// runSuite feeds the fixtures to a pool of workers, skipping byte-identical duplicates
func runSuite(files []string) []*FileTestResult {
	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		if abs, err := filepath.Abs(f); err == nil {
			skipList[abs] = true
		}
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < max(*jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				resultsChan <- testFile(file)
			}
		}()
	}

	seenHashes := make(map[uint64]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		fileHash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if originalFile, seen := seenHashes[fileHash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[fileHash] = file
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})
	return allResults
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func getGoldenPath(file string) string {
	name := "." + filepath.Base(file) + ".golden"
	if *goldenDir != "" {
		return filepath.Join(*goldenDir, name)
	}
	return filepath.Join(filepath.Dir(file), name)
}

// fixtureArgs collects the flags of every `; gwc:` comment line in a fixture
func fixtureArgs(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var args []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, ";") && !strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, ";#"))
		if rest, ok := strings.CutPrefix(line, argsDirective); ok {
			args = append(args, strings.Fields(rest)...)
		}
	}
	return args, scanner.Err()
}

func testFile(file string) *FileTestResult {
	args, err := fixtureArgs(file)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not read fixture: %v", err)}
	}
	args = append(strings.Fields(*gwcArgs), args...)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	result := executeCommand(ctx, *gwcPath, append(args, file)...)
	normalizePaths(file, &result)
	if *verbose {
		log.Printf("[%s] %s %s exited %d in %s", filepath.Base(file), *gwcPath, strings.Join(args, " "), result.ExitCode, result.Duration)
	}

	goldenFile := getGoldenPath(file)
	if *update {
		if err := writeGolden(goldenFile, result); err != nil {
			return &FileTestResult{File: file, Status: "ERROR", Message: err.Error(), Args: args, Result: &result}
		}
		return &FileTestResult{File: file, Status: "PASS", Message: "Golden file updated", Args: args, Result: &result}
	}

	golden, err := readGolden(goldenFile)
	if os.IsNotExist(err) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "No golden file, run with --update to create one", Args: args, Result: &result}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: err.Error(), Args: args, Result: &result}
	}
	return compareResults(file, args, golden, &result)
}

func readGolden(path string) (*Execution, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var golden Execution
	if err := json.Unmarshal(data, &golden); err != nil {
		return nil, fmt.Errorf("could not parse golden file %s: %w", path, err)
	}
	return &golden, nil
}

func writeGolden(path string, result Execution) error {
	// Timing is not part of the expected behaviour
	result.Duration = 0
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal golden data: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file %s: %w", path, err)
	}
	return nil
}

// normalizePaths strips the fixture's directory from gwc's output so golden
// files hold the same diagnostics wherever the suite is checked out
func normalizePaths(file string, result *Execution) {
	dir := filepath.Dir(file) + string(filepath.Separator)
	result.Stdout = strings.ReplaceAll(result.Stdout, dir, "")
	result.Stderr = strings.ReplaceAll(result.Stderr, dir, "")
}

// Timing differs between runs
var compared = cmpopts.IgnoreFields(Execution{}, "Duration")

func compareResults(file string, args []string, golden, result *Execution) *FileTestResult {
	res := &FileTestResult{File: file, Args: args, Golden: golden, Result: result}
	if result.TimedOut {
		res.Status, res.Message = "FAIL", fmt.Sprintf("gwc timed out after %s", *timeout)
		return res
	}
	if cmp.Equal(*golden, *result, compared) {
		res.Status, res.Message = "PASS", fmt.Sprintf("Output matches golden file (%s)", formatDuration(result.Duration))
		return res
	}

	var diffs strings.Builder
	if golden.ExitCode != result.ExitCode {
		diffs.WriteString(fmt.Sprintf("Exit code mismatch: golden %d, got %d\n", golden.ExitCode, result.ExitCode))
		if result.Stderr != "" {
			diffs.WriteString(fmt.Sprintf("gwc STDERR:\n%s\n", result.Stderr))
		}
	}
	if golden.Stdout != result.Stdout {
		diffs.WriteString("STDOUT mismatch:\n")
		diffs.WriteString(lineDiff(golden.Stdout, result.Stdout))
	}
	if golden.Stderr != result.Stderr {
		diffs.WriteString("STDERR mismatch:\n")
		diffs.WriteString(lineDiff(golden.Stderr, result.Stderr))
	}
	if *verbose {
		diffs.WriteString(cmp.Diff(*golden, *result, compared))
	}
	res.Status, res.Message, res.Diff = "FAIL", "Output differs from golden file", diffs.String()
	return res
}

// lineDiff renders a line-level diff with - for golden and + for actual lines
func lineDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func executeCommand(ctx context.Context, command string, args ...string) Execution {
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	execResult := Execution{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(startTime),
	}

	if ctx.Err() == context.DeadlineExceeded {
		execResult.TimedOut = true
		execResult.ExitCode = -1
	} else if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			execResult.ExitCode = exitErr.ExitCode()
		} else {
			execResult.ExitCode = -2
			execResult.Stderr += "\nExecution error: " + err.Error()
		}
	}
	return execResult
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000.0)
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	var total time.Duration

	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s...\n", cCyan(result.File))

		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%s] %s\n", cGreen("PASS"), result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%s] %s\n", cRed("FAIL"), result.Message)
			fmt.Println(formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Printf("  [%s] %s\n", cYellow("SKIP"), result.Message)
		case "ERROR":
			errored++
			fmt.Printf("  [%s] %s\n", cRed("ERROR"), result.Message)
		}
		if result.Result != nil {
			total += result.Result.Duration
		}
	}

	fmt.Println("======================================================================")
	fmt.Printf("%s %d passed, %d failed, %d skipped, %d errored, %d total\n",
		cBold("Summary:"), passed, failed, skipped, errored, len(results))
	fmt.Printf("Total gwc time: %s\n", formatDuration(total))
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		lineWithIndent := "    " + line
		trimmedLine := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmedLine, "-"):
			builder.WriteString(cRed(lineWithIndent))
		case strings.HasPrefix(trimmedLine, "+"):
			builder.WriteString(cGreen(lineWithIndent))
		default:
			builder.WriteString(lineWithIndent)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

func writeJSONReport(results []*FileTestResult) TestSuiteResults {
	resultsMap := make(TestSuiteResults, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}

	jsonData, err := json.MarshalIndent(resultsMap, "", "  ")
	if err != nil {
		log.Printf("%s Failed to marshal results to JSON: %v\n", cRed("[ERROR]"), err)
		return resultsMap
	}

	outputFile := *outputJSON
	if *goldenDir != "" {
		if err := os.MkdirAll(*goldenDir, 0755); err != nil {
			log.Printf("%s Failed to create dir %s: %v\n", cRed("[ERROR]"), *goldenDir, err)
		}
		outputFile = filepath.Join(*goldenDir, *outputJSON)
	}

	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s Failed to write JSON report to %s: %v\n", cRed("[ERROR]"), outputFile, err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return resultsMap
}

func hasFailures(results TestSuiteResults) bool {
	for _, result := range results {
		if result.Status == "FAIL" || result.Status == "ERROR" {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			absFile, err := filepath.Abs(file)
			if err != nil {
				continue // Skip files we can't resolve
			}
			if !seen[absFile] {
				if info, err := os.Stat(absFile); err == nil && info.Mode().IsRegular() {
					allFiles = append(allFiles, absFile)
					seen[absFile] = true
				}
			}
		}
	}
	return allFiles, nil
}
