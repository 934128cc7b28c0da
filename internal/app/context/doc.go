// Package context provides request-scoped state for application services.
//
// # Memoization
//
// Lookups repeated within one use case hit the repository once:
//
//	rc := context.New(ctx)
//	article, err := context.Get(rc, "article:7", func(ctx context.Context) (*domain.Article, error) {
//	    return articles.GetByID(ctx, 7)
//	})
//
// # Compensation
//
// Side effects outside the database (object uploads) are performed through
// the request context so they can be undone when a later step fails:
//
//	if err := rc.Do(ctx, upload); err != nil {
//	    return err
//	}
//	if err := repo.Create(ctx, quote); err != nil {
//	    _ = rc.Rollback(ctx) // deletes the uploaded object
//	    return err
//	}
//	rc.Complete()
package context
