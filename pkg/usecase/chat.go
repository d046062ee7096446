package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/skyelectric/reglens/pkg/domain/model"
	"github.com/skyelectric/reglens/pkg/domain/types"
	"github.com/skyelectric/reglens/pkg/service/chat"
	"github.com/skyelectric/reglens/pkg/utils/errutil"
	"github.com/skyelectric/reglens/pkg/utils/logging"
)

// GuidanceMessage is returned when no retrieval source yields anything to
// answer from
const GuidanceMessage = "I couldn't find any relevant information. Please upload some documents or enable the Knowledge Base to get started."

const (
	kbSourceLabel  = "KNOWLEDGE BASE"
	docSourceLabel = "UPLOADED DOCUMENT"
)

// Chat answers a free-form query. When a session document is present,
// knowledge base consultation is forced on so answers stay comprehensive.
// Retrieval runs once through the weighted fusion path and the fused
// ranking is split back per source. With hits from both sources, the two
// single-source answers run concurrently and a synthesis call merges them
// with [KB]/[DOC] attribution; with one source the answer is forwarded with
// its source list; with none the fixed guidance message is returned. Every
// successful turn is appended to the session's history.
func (uc *UseCases) Chat(ctx context.Context, sid types.SessionID, query string, useKB, hasSessionFile bool) (string, error) {
	sid = sid.Normalize()

	if hasSessionFile {
		useKB = true
	}

	history, err := uc.repo.History().List(ctx, sid)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load conversation history")
	}

	var kbHits, docHits []*model.ScoredRecord
	if useKB || hasSessionFile {
		topK := uc.cfg.ChatTopK
		if hasSessionFile && useKB {
			topK = uc.cfg.ChatDualTopK
		}
		kbHits, docHits = splitBySource(uc.retrieve(ctx, sid, query, topK, useKB, 0))
	}

	answer, err := uc.answer(ctx, query, kbHits, docHits, history)
	if err != nil {
		return "", err
	}

	if err := uc.appendTurn(ctx, sid, query, answer); err != nil {
		return "", err
	}
	return answer, nil
}

func (uc *UseCases) answer(ctx context.Context, query string, kbHits, docHits []*model.ScoredRecord, history []*model.ChatMessage) (string, error) {
	kbContext, kbRefs := buildContext(kbHits, "KB")
	docContext, docRefs := buildContext(docHits, "DOC")

	switch {
	case len(kbHits) > 0 && len(docHits) > 0:
		return uc.answerDual(ctx, query, kbContext, kbRefs, docContext, docRefs, history)

	case len(kbHits) > 0:
		return uc.answerSingle(ctx, query, kbContext, kbRefs, kbSourceLabel, history)

	case len(docHits) > 0:
		return uc.answerSingle(ctx, query, docContext, docRefs, docSourceLabel, history)

	default:
		return GuidanceMessage, nil
	}
}

// answerDual runs both single-source branches concurrently and merges the
// outcomes. A failed branch counts as "no relevant info" so one bad LLM
// call never kills the whole turn.
func (uc *UseCases) answerDual(ctx context.Context, query, kbContext, kbRefs, docContext, docRefs string, history []*model.ChatMessage) (string, error) {
	var kbAnswer, docAnswer string
	var kbErr, docErr error

	var eg errgroup.Group
	eg.Go(func() error {
		kbAnswer, kbErr = uc.chat.AnswerFromSource(ctx, query, kbContext, kbSourceLabel, history)
		return nil
	})
	eg.Go(func() error {
		docAnswer, docErr = uc.chat.AnswerFromSource(ctx, query, docContext, docSourceLabel, history)
		return nil
	})
	_ = eg.Wait()

	if kbErr != nil {
		_ = errutil.Handle(ctx, kbErr, "knowledge base branch failed")
	}
	if docErr != nil {
		_ = errutil.Handle(ctx, docErr, "document branch failed")
	}

	kbOK := kbErr == nil && chat.HasRelevantInfo(kbAnswer)
	docOK := docErr == nil && chat.HasRelevantInfo(docAnswer)

	switch {
	case kbOK && docOK:
		answer, err := uc.chat.Synthesize(ctx, query, kbAnswer, docAnswer, kbRefs, docRefs)
		if err != nil {
			return "", goerr.Wrap(err, "synthesis failed")
		}
		return answer, nil

	case kbOK:
		return kbAnswer + "\n\nSOURCES:\n" + kbRefs, nil

	case docOK:
		return docAnswer + "\n\nSOURCES:\n" + docRefs, nil

	default:
		return uc.answerGeneral(ctx, query, "No relevant context found.", history)
	}
}

func (uc *UseCases) answerSingle(ctx context.Context, query, sourceContext, refs, label string, history []*model.ChatMessage) (string, error) {
	answer, err := uc.chat.AnswerFromSource(ctx, query, sourceContext, label, history)
	if err != nil {
		return "", goerr.Wrap(err, "single-source answer failed", goerr.V("source", label))
	}
	if !chat.HasRelevantInfo(answer) {
		return uc.answerGeneral(ctx, query, "No relevant context found.", history)
	}
	return answer + "\n\nSOURCES:\n" + refs, nil
}

func (uc *UseCases) answerGeneral(ctx context.Context, query, docContext string, history []*model.ChatMessage) (string, error) {
	answer, err := uc.chat.AnswerGeneral(ctx, query, docContext, history)
	if err != nil {
		return "", goerr.Wrap(err, "general answer failed")
	}
	return answer, nil
}

// splitBySource partitions a fused ranking back into its knowledge base and
// session document branches, preserving the fused order within each
func splitBySource(hits []*model.ScoredRecord) (kb, doc []*model.ScoredRecord) {
	for _, hit := range hits {
		if hit.Record.Metadata.SourceType == types.SourceKB {
			kb = append(kb, hit)
		} else {
			doc = append(doc, hit)
		}
	}
	return kb, doc
}

func (uc *UseCases) appendTurn(ctx context.Context, sid types.SessionID, query, answer string) error {
	if err := uc.repo.History().Append(ctx, sid, &model.ChatMessage{
		Role:    types.RoleUser,
		Content: query,
	}); err != nil {
		return goerr.Wrap(err, "failed to append user message")
	}
	if err := uc.repo.History().Append(ctx, sid, &model.ChatMessage{
		Role:    types.RoleAssistant,
		Content: answer,
	}); err != nil {
		return goerr.Wrap(err, "failed to append assistant message")
	}

	logging.From(ctx).Debug("chat turn recorded", "session_id", sid)
	return nil
}

// buildContext renders retrieval hits into the numbered REF blocks the
// prompts consume and the source list appended to answers
func buildContext(hits []*model.ScoredRecord, label string) (string, string) {
	if len(hits) == 0 {
		return "", ""
	}

	var parts, refs []string
	for i, hit := range hits {
		meta := hit.Record.Metadata
		parts = append(parts, fmt.Sprintf(
			"REF [%s %d]:\nFile: %s | Clause: %s | Page: %d\nContent: %s",
			label, i+1, meta.DocName, meta.ClauseLabel, meta.PageNumber, hit.Record.Text,
		))

		snippet := hit.Record.Text
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		snippet = strings.ReplaceAll(strings.ReplaceAll(snippet, "\n", " "), "\r", "")
		refs = append(refs, fmt.Sprintf(
			"- [%s] File: %s | Clause: %s | Page: %d ||| %s",
			label, meta.DocName, meta.ClauseLabel, meta.PageNumber, snippet,
		))
	}
	return strings.Join(parts, "\n\n---\n\n"), strings.Join(refs, "\n")
}
