package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	gerrors "github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/output"
	"github.com/lgbarn/gambit/internal/testutil"
	"github.com/lgbarn/gambit/internal/training"
	"github.com/lgbarn/gambit/internal/uci"
)

func decodeRecords(t *testing.T, out []byte) []output.Record {
	t.Helper()
	var recs []output.Record
	dec := yaml.NewDecoder(bytes.NewReader(out))
	for {
		var rec output.Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return recs
		}
		if err != nil {
			t.Fatalf("decoding output: %v\n%s", err, out)
		}
		recs = append(recs, rec)
	}
}

func intp(n int) *int { return &n }

func TestAnalyzeBatch(t *testing.T) {
	f := &fakeEngine{results: map[string]uci.Result{
		testutil.StartFEN:     {BestMove: "e2e4", Evaluation: 25, Depth: 12, PV: []string{"e2e4", "e7e5"}},
		testutil.AfterE4FEN:   {BestMove: "c7c5", Evaluation: 30, Depth: 12, PV: []string{"c7c5"}},
		testutil.ScholarFEN:   {BestMove: "g8f6", Evaluation: 10, Depth: 11},
		testutil.PromotionFEN: {BestMove: "a7a8q", MateIn: intp(4), Depth: 20, PV: []string{"a7a8q"}},
	}}
	svc := training.NewService(f)

	input := strings.Join([]string{
		"# openings",
		testutil.StartFEN,
		"",
		testutil.AfterE4FEN,
		"not a position",
		"  " + testutil.ScholarFEN + "  ",
		testutil.PromotionFEN,
	}, "\n")

	var out bytes.Buffer
	n, err := analyzeBatch(context.Background(), svc, strings.NewReader(input), output.NewYAMLWriter(&out), batchOptions{Workers: 3})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 5)

	got := decodeRecords(t, out.Bytes())
	if len(got) != 5 {
		t.Fatalf("decoded %d records, want 5", len(got))
	}
	testutil.AssertTrue(t, got[2].Error != "", "malformed line should carry an error")
	got[2].Error = ""

	want := []output.Record{
		{FEN: testutil.StartFEN, Depth: 12, CP: intp(25), Best: "e2e4", PV: []string{"e2e4", "e7e5"}},
		{FEN: testutil.AfterE4FEN, Depth: 12, CP: intp(30), Best: "c7c5", PV: []string{"c7c5"}},
		{FEN: "not a position"},
		{FEN: testutil.ScholarFEN, Depth: 11, CP: intp(10), Best: "g8f6"},
		{FEN: testutil.PromotionFEN, Depth: 20, Mate: intp(4), Best: "a7a8q", PV: []string{"a7a8q"}},
	}
	testutil.AssertEqual(t, got, want)
}

func TestAnalyzeBatch_ShortFENNormalized(t *testing.T) {
	f := &fakeEngine{results: map[string]uci.Result{
		testutil.StartFEN: {Evaluation: 15, Depth: 5},
	}}
	var out bytes.Buffer
	_, err := analyzeBatch(context.Background(), training.NewService(f),
		strings.NewReader("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -\n"), output.NewYAMLWriter(&out), batchOptions{Workers: 1})
	testutil.AssertNoError(t, err)

	got := decodeRecords(t, out.Bytes())
	testutil.AssertEqual(t, got, []output.Record{{FEN: testutil.StartFEN, Depth: 5, CP: intp(15)}})
}

func TestAnalyzeBatch_EngineErrors(t *testing.T) {
	t.Run("protocol error is recorded", func(t *testing.T) {
		f := &fakeEngine{err: gerrors.ErrEngineProtocol}
		var out bytes.Buffer
		n, err := analyzeBatch(context.Background(), training.NewService(f),
			strings.NewReader(testutil.StartFEN+"\n"+testutil.AfterE4FEN+"\n"), output.NewYAMLWriter(&out), batchOptions{Workers: 2})
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, n, 2)
		for _, rec := range decodeRecords(t, out.Bytes()) {
			testutil.AssertContains(t, rec.Error, "engine protocol error")
		}
	})

	t.Run("unavailable engine stops the batch", func(t *testing.T) {
		f := &fakeEngine{err: gerrors.ErrEngineUnavailable}
		_, err := analyzeBatch(context.Background(), training.NewService(f),
			strings.NewReader(strings.Repeat(testutil.StartFEN+"\n", 20)), output.NewYAMLWriter(io.Discard), batchOptions{Workers: 2})
		testutil.AssertErrorIs(t, err, gerrors.ErrEngineUnavailable)
	})
}

func TestAnalyzeBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeEngine{results: map[string]uci.Result{}}
	_, err := analyzeBatch(ctx, training.NewService(f),
		strings.NewReader(strings.Repeat(testutil.StartFEN+"\n", 5)), output.NewYAMLWriter(io.Discard), batchOptions{Workers: 1})
	testutil.AssertErrorIs(t, err, context.Canceled)
}

func TestAnalyzeBatch_SkipDuplicates(t *testing.T) {
	f := &fakeEngine{results: map[string]uci.Result{
		testutil.StartFEN:   {Evaluation: 20, Depth: 10},
		testutil.AfterE4FEN: {Evaluation: 25, Depth: 10},
	}}
	input := strings.Join([]string{
		testutil.StartFEN,
		testutil.AfterE4FEN,
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 6 9",
		testutil.AfterE4FEN,
	}, "\n")

	var out bytes.Buffer
	n, err := analyzeBatch(context.Background(), training.NewService(f), strings.NewReader(input), output.NewYAMLWriter(&out), batchOptions{Workers: 2, SkipDuplicates: true})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 4)
	testutil.AssertEqual(t, f.requests, 2, "engine requests")

	got := decodeRecords(t, out.Bytes())
	testutil.AssertEqual(t, got, []output.Record{
		{FEN: testutil.StartFEN, Depth: 10, CP: intp(20)},
		{FEN: testutil.AfterE4FEN, Depth: 10, CP: intp(25)},
		{FEN: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 6 9", Duplicate: true},
		{FEN: testutil.AfterE4FEN, Duplicate: true},
	})
}
