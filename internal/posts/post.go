package posts

// DateLayout is how the publish date is stored and shown, e.g. "August 09, 2024".
const DateLayout = "January 02, 2006"

type Post struct {
	ID         int    `json:"id"`
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Date       string `json:"date"`
	Body       string `json:"body"`
	ImgURL     string `json:"img_url"`
}

type Comment struct {
	ID         int    `json:"id"`
	PostID     int    `json:"post_id"`
	AuthorID   int    `json:"author_id"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text"`
}
