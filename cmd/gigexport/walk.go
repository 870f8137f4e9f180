package main

import (
	"context"

	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/export"
	"github.com/dalemusser/gigboard/pantry/pagination"
)

// pageFn reads one page of a listing.
type pageFn[T pagination.Identified] func(ctx context.Context, req pagination.Request) (*pagination.Envelope[T], error)

// tally is what a walk saw: the rows it visited and the listing's total
// as counted by the first page. Rows falls short of Total when the store
// holds records that do not decode.
type tally struct {
	Rows  int
	Total uint64
}

// walk visits every item of a listing newest first. It starts with a first
// load and follows the last cursor forward until a window comes back
// empty. Page numbers are not trusted for termination: skipped records
// shift windows without advancing the cursor past them.
func walk[T pagination.Identified](ctx context.Context, list pageFn[T], status pagination.StatusFilter, visit func(T) error) (tally, error) {
	req := pagination.FirstPage(status)
	var t tally
	for first := true; ; first = false {
		if err := ctx.Err(); err != nil {
			return t, err
		}
		env, err := list(ctx, req)
		if err != nil {
			return t, err
		}
		if first {
			t.Total = env.ResCount.TotalCount
		}
		for _, item := range env.CurrentItems {
			if err := visit(item); err != nil {
				return t, err
			}
			t.Rows++
		}
		if len(env.CurrentItems) == 0 || env.PageInfo.LastCursor == nil {
			return t, nil
		}
		req = pagination.Request{
			Page:   env.PageInfo.CurrentPage,
			Last:   pagination.BoundaryAt(*env.PageInfo.LastCursor),
			Status: status,
		}
	}
}

func exportUsers(ctx context.Context, s *store.Store, status pagination.StatusFilter, w export.Writer) (tally, error) {
	if err := w.Header("id", "username", "email", "nickname", "worker_quality", "boss_quality", "status", "created_at"); err != nil {
		return tally{}, err
	}
	return walk(ctx, s.Users, status, func(u store.User) error {
		return w.Row(u.ID, u.Username, u.Email, u.Nickname, u.WorkerQuality, u.BossQuality, u.Status, u.CreatedAt)
	})
}

func exportProjects(ctx context.Context, s *store.Store, status pagination.StatusFilter, w export.Writer) (tally, error) {
	if err := w.Header("id", "user_id", "category_id", "subject", "investment", "worker_type", "external", "hits", "status", "created_at"); err != nil {
		return tally{}, err
	}
	return walk(ctx, s.Projects, status, func(p store.Project) error {
		return w.Row(p.ID, p.UserID, p.CategoryID, p.Subject, p.Investment, p.WorkerType, p.External, p.Hits, p.Status, p.CreatedAt)
	})
}
