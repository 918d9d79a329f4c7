package posts

import (
	"context"
	"sort"
	"sync"
)

var _ postsRepo = (*RepoMock)(nil)

// RepoMock is an in-memory posts repo, it mirrors the schema rules:
// unique titles and comments deleted together with their post.
type RepoMock struct {
	Posts         map[int]*Post
	PostComments  map[int]*Comment
	lastPostID    int
	lastCommentID int
	mutex         sync.Mutex
}

func NewRepoMock() *RepoMock {
	return &RepoMock{
		Posts:        make(map[int]*Post),
		PostComments: make(map[int]*Comment),
	}
}

func (r *RepoMock) All(_ context.Context) ([]*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var allPosts []*Post
	for _, p := range r.Posts {
		post := *p
		allPosts = append(allPosts, &post)
	}
	sort.Slice(allPosts, func(i, j int) bool {
		return allPosts[i].ID < allPosts[j].ID
	})
	return allPosts, nil
}

func (r *RepoMock) Get(_ context.Context, id int) (*Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, ok := r.Posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post := *p
	return &post, nil
}

func (r *RepoMock) TitleTaken(_ context.Context, title string, excludeID int) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.titleTaken(title, excludeID), nil
}

func (r *RepoMock) titleTaken(title string, excludeID int) bool {
	for id, p := range r.Posts {
		if id != excludeID && p.Title == title {
			return true
		}
	}
	return false
}

func (r *RepoMock) Add(_ context.Context, post *Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.titleTaken(post.Title, 0) {
		return ErrPostTitleExists
	}

	r.lastPostID++
	post.ID = r.lastPostID
	stored := *post
	r.Posts[post.ID] = &stored
	return nil
}

func (r *RepoMock) Update(_ context.Context, id int, title, subtitle, imgURL, body string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	p, ok := r.Posts[id]
	if !ok {
		return ErrPostNotFound
	}
	if r.titleTaken(title, id) {
		return ErrPostTitleExists
	}

	p.Title = title
	p.Subtitle = subtitle
	p.ImgURL = imgURL
	p.Body = body
	return nil
}

func (r *RepoMock) Delete(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[id]; !ok {
		return ErrPostNotFound
	}

	delete(r.Posts, id)
	for commentID, c := range r.PostComments {
		if c.PostID == id {
			delete(r.PostComments, commentID)
		}
	}
	return nil
}

func (r *RepoMock) AddComment(_ context.Context, comment *Comment) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Posts[comment.PostID]; !ok {
		return ErrPostNotFound
	}

	r.lastCommentID++
	comment.ID = r.lastCommentID
	stored := *comment
	r.PostComments[comment.ID] = &stored
	return nil
}

func (r *RepoMock) Comments(_ context.Context, postID int) ([]*Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var comments []*Comment
	for _, c := range r.PostComments {
		if c.PostID == postID {
			comment := *c
			comments = append(comments, &comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}
