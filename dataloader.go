package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/lib/pq"
)

// DataLoaderContextKey is the key used to store dataloaders in context
type DataLoaderContextKey string

const dataLoaderKey DataLoaderContextKey = "dataloader"

// UserInfo is the card-level user record the read models hydrate with.
type UserInfo struct {
	ID     int
	Name   string
	Avatar string
}

// DataLoaders batches the per-user lookups the match listing needs, so a
// page of N matches costs three queries instead of 3N.
type DataLoaders struct {
	UserLoader    *dataloader.Loader[int, *UserInfo]
	ProfileLoader *dataloader.Loader[int, *Profile]
	ChoicesLoader *dataloader.Loader[int, *Choices]
}

// NewDataLoaders creates new dataloaders with the database connection
func NewDataLoaders(db *sql.DB) *DataLoaders {
	return &DataLoaders{
		UserLoader:    dataloader.NewBatchedLoader(userBatchFn(db), dataloader.WithWait[int, *UserInfo](16*time.Millisecond)),
		ProfileLoader: dataloader.NewBatchedLoader(profileBatchFn(db), dataloader.WithWait[int, *Profile](16*time.Millisecond)),
		ChoicesLoader: dataloader.NewBatchedLoader(choicesBatchFn(db), dataloader.WithWait[int, *Choices](16*time.Millisecond)),
	}
}

// GetDataLoadersFromContext retrieves dataloaders from context
func GetDataLoadersFromContext(ctx context.Context) *DataLoaders {
	if dl, ok := ctx.Value(dataLoaderKey).(*DataLoaders); ok {
		return dl
	}
	return nil
}

// WithDataLoaders adds dataloaders to context
func WithDataLoaders(ctx context.Context, dl *DataLoaders) context.Context {
	return context.WithValue(ctx, dataLoaderKey, dl)
}

// dataLoaderMiddleware gives every request a fresh set of loaders, so batch
// caching never leaks data across requests.
func dataLoaderMiddleware(db *sql.DB, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithDataLoaders(r.Context(), NewDataLoaders(db))))
	})
}

// emptyResults pre-fills a result slice so keys missing from the query come
// back as (nil, nil) rather than a hole.
func emptyResults[V any](n int) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{}
	}
	return results
}

func failAll[V any](results []*dataloader.Result[V], err error) []*dataloader.Result[V] {
	for i := range results {
		results[i].Error = err
	}
	return results
}

// userBatchFn creates a batch function for loading users
func userBatchFn(db *sql.DB) dataloader.BatchFunc[int, *UserInfo] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*UserInfo] {
		results := emptyResults[*UserInfo](len(keys))
		if len(keys) == 0 {
			return results
		}
		index := make(map[int]int, len(keys))
		for i, key := range keys {
			index[key] = i
		}

		rows, err := db.QueryContext(ctx, `
			SELECT id, name, COALESCE(NULLIF(avatar, ''), '👤')
			FROM users
			WHERE id = ANY($1)
		`, pq.Array(keys))
		if err != nil {
			return failAll(results, err)
		}
		defer rows.Close()

		for rows.Next() {
			var u UserInfo
			if err := rows.Scan(&u.ID, &u.Name, &u.Avatar); err != nil {
				return failAll(results, err)
			}
			if i, ok := index[u.ID]; ok {
				results[i].Data = &u
			}
		}
		if err := rows.Err(); err != nil {
			return failAll(results, err)
		}
		return results
	}
}

// profileBatchFn creates a batch function for loading profiles
func profileBatchFn(db *sql.DB) dataloader.BatchFunc[int, *Profile] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*Profile] {
		results := emptyResults[*Profile](len(keys))
		if len(keys) == 0 {
			return results
		}
		index := make(map[int]int, len(keys))
		for i, key := range keys {
			index[key] = i
		}

		rows, err := db.QueryContext(ctx, `
			SELECT user_id, branch, year, semester, category, looking_for, bio
			FROM profiles
			WHERE user_id = ANY($1)
		`, pq.Array(keys))
		if err != nil {
			return failAll(results, err)
		}
		defer rows.Close()

		for rows.Next() {
			var p Profile
			if err := rows.Scan(&p.UserID, &p.Branch, &p.Year, &p.Semester, &p.Category, &p.LookingFor, &p.Bio); err != nil {
				return failAll(results, err)
			}
			if i, ok := index[p.UserID]; ok {
				results[i].Data = &p
			}
		}
		if err := rows.Err(); err != nil {
			return failAll(results, err)
		}
		return results
	}
}

// choicesBatchFn creates a batch function for loading attribute sets
func choicesBatchFn(db *sql.DB) dataloader.BatchFunc[int, *Choices] {
	return func(ctx context.Context, keys []int) []*dataloader.Result[*Choices] {
		results := emptyResults[*Choices](len(keys))
		if len(keys) == 0 {
			return results
		}
		index := make(map[int]int, len(keys))
		for i, key := range keys {
			index[key] = i
		}

		rows, err := db.QueryContext(ctx, `
			SELECT user_id, skills, looking, interests, experience
			FROM user_choices
			WHERE user_id = ANY($1)
		`, pq.Array(keys))
		if err != nil {
			return failAll(results, err)
		}
		defer rows.Close()

		for rows.Next() {
			var c Choices
			if err := rows.Scan(&c.UserID, &c.Skills, &c.Looking, &c.Interests, &c.Experience); err != nil {
				return failAll(results, err)
			}
			if i, ok := index[c.UserID]; ok {
				results[i].Data = &c
			}
		}
		if err := rows.Err(); err != nil {
			return failAll(results, err)
		}
		return results
	}
}
