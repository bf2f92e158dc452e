package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"

	hashcode "github.com/starfederation/hashcode-go"
)

type cli struct {
	Input   string  `arg:"" optional:"" help:"JSON-lines input file (defaults to stdin)."`
	Buckets int     `help:"Number of buckets to distribute records over." default:"16"`
	Seed    *uint32 `help:"Fixed seed; omit to use the per-process random seed."`
}

func main() {
	log.SetFlags(0)

	var args cli
	kong.Parse(&args,
		kong.Name("hashdist"),
		kong.Description("Combine JSON-lines records into hash codes and report their bucket distribution."),
		kong.UsageOnError(),
	)
	if args.Buckets < 2 {
		log.Fatal("hashdist: need at least 2 buckets")
	}

	var in io.Reader = os.Stdin
	if args.Input != "" {
		f, err := os.Open(args.Input)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	counts, total, err := bucketRecords(in, args.Buckets, args.Seed)
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, counts, total)
}

// bucketRecords combines each JSON line into a code and tallies which
// bucket it lands in. A nil seed uses the per-process random seed.
func bucketRecords(r io.Reader, buckets int, seed *uint32) ([]int, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	counts := make([]int, buckets)
	line := 0
	total := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var code int32
		var err error
		if seed != nil {
			code, err = hashcode.CombineJSONSeeded(data, *seed)
		} else {
			code, err = hashcode.CombineJSON(data)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		counts[uint32(code)%uint32(buckets)]++
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	return counts, total, nil
}

// chiSquared measures how far the bucket counts sit from a uniform
// distribution; for well dispersed codes it stays near the bucket
// count.
func chiSquared(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	expected := float64(total) / float64(len(counts))
	var x2 float64
	for _, c := range counts {
		d := float64(c) - expected
		x2 += d * d / expected
	}
	return x2
}

func render(w io.Writer, counts []int, total int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Bucket", "Count", "Share"})
	for i, c := range counts {
		share := "0.0%"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", 100*float64(c)/float64(total))
		}
		table.Append([]string{strconv.Itoa(i), strconv.Itoa(c), share})
	}
	table.Render()
	fmt.Fprintf(w, "records: %d  buckets: %d  chi-squared: %.2f\n", total, len(counts), chiSquared(counts, total))
}
