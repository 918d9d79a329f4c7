package posts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrPostTitleExists = errors.New("post with this title exists")
)

const selectPosts = `
	SELECT p.id, p.author_id, u.name, p.title, p.subtitle, p.date, p.body, p.img_url
	FROM blog_post p
	JOIN blog_user u ON u.id = p.author_id
`

var _ postsRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// All returns every post in insertion order, there is no paging.
func (r *Repo) All(ctx context.Context) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.All")
	defer span.End()

	rows, err := r.db.Query(ctx, selectPosts+` ORDER BY p.id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *Repo) Get(ctx context.Context, id int) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Get")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	post, err := scanPost(r.db.QueryRow(ctx, selectPosts+` WHERE p.id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	return post, nil
}

// TitleTaken checks if another post (not excludeID) already uses the title.
func (r *Repo) TitleTaken(ctx context.Context, title string, excludeID int) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.TitleTaken")
	defer span.End()

	var taken bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_post WHERE title = $1 AND id <> $2);`,
		title, excludeID,
	).Scan(&taken); err != nil {
		return false, err
	}

	return taken, nil
}

func (r *Repo) Add(ctx context.Context, post *Post) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Add")
	defer span.End()

	if post.Title == "" || post.Body == "" {
		return errors.New("post title or body empty")
	}

	if err := r.db.QueryRow(
		ctx,
		`
			INSERT INTO blog_post (author_id, title, subtitle, date, body, img_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;
		`,
		post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL,
	).Scan(&post.ID); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrPostTitleExists
		}
		return fmt.Errorf("insert post: %w", err)
	}

	span.SetAttributes(attribute.Int("id", post.ID))
	log.Tracef("new post %d: [%s] added", post.ID, post.Title)

	return nil
}

// Update changes the editable parts of a post, author and date stay as they were.
func (r *Repo) Update(ctx context.Context, id int, title, subtitle, imgURL, body string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Update")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog_post SET title = $1, subtitle = $2, img_url = $3, body = $4 WHERE id = $5;`,
		title, subtitle, imgURL, body, id,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrPostTitleExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// Delete removes the post, its comments go with it (ON DELETE CASCADE).
func (r *Repo) Delete(ctx context.Context, id int) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Delete")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM blog_post WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *Repo) AddComment(ctx context.Context, comment *Comment) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.AddComment")
	span.SetAttributes(attribute.Int("post_id", comment.PostID))
	defer span.End()

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO blog_comment (author_id, post_id, text) VALUES ($1, $2, $3) RETURNING id;`,
		comment.AuthorID, comment.PostID, comment.Text,
	).Scan(&comment.ID); err != nil {
		// the post was deleted meanwhile
		if pkg.IsForeignKeyViolationError(err) && pkg.ViolatedConstraint(err) == "blog_comment_post_id_fkey" {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

func (r *Repo) Comments(ctx context.Context, postID int) ([]*Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "postsRepo.Comments")
	span.SetAttributes(attribute.Int("post_id", postID))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT c.id, c.post_id, c.author_id, u.name, c.text
			FROM blog_comment c
			JOIN blog_user u ON u.id = c.author_id
			WHERE c.post_id = $1
			ORDER BY c.id;
		`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Text); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	if err := row.Scan(
		&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
