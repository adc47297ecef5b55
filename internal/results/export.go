package results

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	bencherrors "github.com/jpbench/jpbench/internal/errors"
)

// ExportDocument is the chart input written by Export.
type ExportDocument struct {
	RunID  string        `json:"run_id"`
	Groups []ExportGroup `json:"groups"`
}

// ExportGroup holds the targets of one benchset.
type ExportGroup struct {
	Benchset     string         `json:"benchset"`
	DatasetBytes int64          `json:"dataset_bytes"`
	Targets      []ExportTarget `json:"targets"`
}

// ExportTarget is one engine's result in a group.
type ExportTarget struct {
	Target     string  `json:"target"`
	Engine     string  `json:"engine"`
	Query      string  `json:"query"`
	Matches    uint64  `json:"matches"`
	MeanNs     float64 `json:"mean_ns"`
	MedianNs   float64 `json:"median_ns"`
	StdDevNs   float64 `json:"stddev_ns"`
	CILowNs    float64 `json:"ci_low_ns"`
	CIHighNs   float64 `json:"ci_high_ns"`
	Confidence float64 `json:"confidence"`
	Throughput float64 `json:"throughput_mbps"`
}

// Export writes the measurements of runID as indented JSON grouped by
// benchset. An empty runID exports the latest complete run. Running and
// failed runs are refused.
func (s *Store) Export(ctx context.Context, runID string, w io.Writer) error {
	if runID == "" {
		latest, err := s.LatestRunID(ctx)
		if err != nil {
			return err
		}
		runID = latest
	} else {
		status, err := s.RunStatus(ctx, runID)
		if err != nil {
			return err
		}
		if status != RunComplete {
			return bencherrors.New(bencherrors.ErrCategoryResults, bencherrors.CodeRunIncomplete,
				fmt.Sprintf("run %s is %s", runID, status))
		}
	}

	records, err := s.Measurements(ctx, runID)
	if err != nil {
		return err
	}

	doc := ExportDocument{RunID: runID, Groups: []ExportGroup{}}
	for _, r := range records {
		if n := len(doc.Groups); n == 0 || doc.Groups[n-1].Benchset != r.BenchsetID {
			doc.Groups = append(doc.Groups, ExportGroup{Benchset: r.BenchsetID, DatasetBytes: r.DatasetBytes})
		}
		g := &doc.Groups[len(doc.Groups)-1]
		g.Targets = append(g.Targets, ExportTarget{
			Target:     r.TargetID,
			Engine:     r.Engine,
			Query:      r.Query,
			Matches:    r.MatchCount,
			MeanNs:     r.Summary.Mean,
			MedianNs:   r.Summary.Median,
			StdDevNs:   r.Summary.StdDev,
			CILowNs:    r.Summary.Low,
			CIHighNs:   r.Summary.High,
			Confidence: r.Summary.Confidence,
			Throughput: r.Throughput,
		})
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return bencherrors.NewResultsError("failed to encode export", err)
	}
	return nil
}
