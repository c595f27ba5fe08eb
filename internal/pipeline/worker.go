package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"masrag/internal/doctree"
	"masrag/internal/enrich"
	"masrag/internal/lineext"
	"masrag/internal/parser"
	"masrag/internal/vecstore"
)

// Worker processes a single notice ingestion job.
type Worker struct {
	gemini  *enrich.GeminiClient
	store   *vecstore.Store
	log     *slog.Logger
	extOpts lineext.Options

	maxConcurrentEnrich int
	maxConcurrentStore  int
}

func NewWorker(gemini *enrich.GeminiClient, store *vecstore.Store, log *slog.Logger, extOpts lineext.Options, maxEnrich, maxStore int) *Worker {
	return &Worker{
		gemini:              gemini,
		store:               store,
		log:                 log,
		extOpts:             extOpts,
		maxConcurrentEnrich: maxEnrich,
		maxConcurrentStore:  maxStore,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract lines from the uploaded file.
	job.SetStatus(StatusExtracting, "extracting")
	ext, err := lineext.ForFile(job.Filename, w.extOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	res, err := ext.Extract(bytes.NewReader(job.fileData), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	// Phase 2: Parse the line stream into the notice tree.
	job.SetStatus(StatusParsing, "parsing")
	doc, err := parser.ParseNotice(parser.Input{
		Filename:    job.Filename,
		Lines:       res.Lines,
		HeaderLines: res.Header,
	})
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetNoticeID(doc.Metadata.NoticeID)
	for _, warn := range doc.Warnings {
		job.AddWarning(fmt.Sprintf("line %d page %d: %s: %q", warn.Seq, warn.Page, warn.Reason, warn.Marker))
	}

	nodes := make([]*doctree.Node, 0, len(doc.Order))
	for _, n := range doc.PreOrder() {
		if strings.TrimSpace(n.Text) != "" {
			nodes = append(nodes, n)
		}
	}
	job.SetTotalNodes(len(nodes))
	log.Info("parsed notice", "notice_id", doc.Metadata.NoticeID, "nodes", len(nodes), "warnings", len(doc.Warnings))

	if len(nodes) == 0 {
		job.AddError("no storable content")
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Phase 3: Enrich nodes with bounded concurrency.
	job.SetStatus(StatusEnriching, "enriching")
	type enrichResult struct {
		node *doctree.Node
		enr  *enrich.NodeEnrichment
		err  error
	}
	results := make(chan enrichResult, len(nodes))
	sem := make(chan struct{}, w.maxConcurrentEnrich)

	for _, node := range nodes {
		sem <- struct{}{}
		go func(node *doctree.Node) {
			defer func() { <-sem }()
			var enr *enrich.NodeEnrichment
			var lastErr error
			for attempt := range MaxRetries {
				enr, lastErr = w.gemini.EnrichNode(ctx, node.Text)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable enrichment error", "node_id", node.ID, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- enrichResult{node: node, err: ctx.Err()}
					return
				}
			}
			results <- enrichResult{node: node, enr: enr, err: lastErr}
		}(node)
	}

	// Collect enrichment results.
	rows := make([]vecstore.StoredNode, 0, len(nodes))
	hadErrors := false
	for range nodes {
		r := <-results
		if r.err != nil {
			log.Error("enrichment failed", "node_id", r.node.ID, "error", r.err)
			job.AddError(fmt.Sprintf("enrich %s: %s", r.node.ID, r.err))
			hadErrors = true
			continue
		}
		job.IncrNodesEnriched()
		rows = append(rows, vecstore.StoredNode{
			NodeID:          r.node.ID,
			NoticeID:        doc.Metadata.NoticeID,
			NodeType:        string(r.node.Type),
			ParentID:        r.node.ParentID,
			NumberingPath:   r.node.NumberingPath,
			Text:            r.node.Text,
			Summary:         r.enr.Summary,
			Question:        r.enr.Question,
			PublicationDate: doc.Metadata.PublicationDate,
			EffectiveDate:   doc.Metadata.EffectiveDate,
			Embedding:       r.enr.Embedding,
		})
	}
	log.Info("enrichment complete", "enriched", len(rows), "errors", hadErrors)

	if len(rows) == 0 {
		job.SetStatus(StatusFailed, "enriching")
		return
	}

	// Phase 4: Upsert rows with bounded concurrency.
	job.SetStatus(StatusStoring, "storing")
	storeSem := make(chan struct{}, w.maxConcurrentStore)
	type storeResult struct {
		nodeID string
		err    error
	}
	storeResults := make(chan storeResult, len(rows))

	for _, row := range rows {
		storeSem <- struct{}{}
		go func(row vecstore.StoredNode) {
			defer func() { <-storeSem }()
			storeResults <- storeResult{nodeID: row.NodeID, err: w.store.Upsert(ctx, row)}
		}(row)
	}

	storedCount := 0
	for range rows {
		r := <-storeResults
		if r.err != nil {
			log.Error("store failed", "node_id", r.nodeID, "error", r.err)
			job.AddError(fmt.Sprintf("store %s: %s", r.nodeID, r.err))
			hadErrors = true
			continue
		}
		job.IncrNodesStored()
		storedCount++
	}
	log.Info("storage complete", "stored", storedCount, "total", len(rows))

	switch {
	case hadErrors && storedCount > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}
