package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/anuragpatel/minisocial-service/internal/config"
	"github.com/anuragpatel/minisocial-service/internal/storage"
	"github.com/anuragpatel/minisocial-service/internal/types"
	"github.com/anuragpatel/minisocial-service/internal/types/users"
)

const uniqueViolation = "23505"

type Postgres struct {
	Db *sql.DB
}

func NewPostgres(cfg *config.Config) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.PGSQL.Host, cfg.PGSQL.Port, cfg.PGSQL.User, cfg.PGSQL.Password, cfg.PGSQL.DBName, cfg.PGSQL.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Connected to Postgres database")

	pg := &Postgres{Db: db}
	err = pg.CreateTables()
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pg, nil
}

func (p *Postgres) CreateTables() error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			username VARCHAR(255) NOT NULL,
			age INTEGER,
			email VARCHAR(255) UNIQUE NOT NULL,
			password TEXT NOT NULL,
			profile_pic VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS posts (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS post_likes (
			post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			liked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (post_id, user_id)
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts (user_id);`,
	}

	for _, q := range queries {
		if _, err := p.Db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

func (p *Postgres) CreateUser(name, username, email, hashedPassword string, age int) (string, error) {
	var userID int
	query := `
	INSERT INTO users (name, username, email, password, age)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	err := p.Db.QueryRow(query, name, username, email, hashedPassword, age).Scan(&userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", storage.ErrDuplicateEmail
		}
		return "", err
	}

	return fmt.Sprintf("%d", userID), nil
}

func (p *Postgres) GetUserByEmail(email string) (users.User, error) {
	query := `
	SELECT id, name, username, COALESCE(age, 0), email, password, profile_pic, created_at
	FROM users WHERE email = $1
	`

	return p.scanUser(p.Db.QueryRow(query, email))
}

func (p *Postgres) GetUserByID(id string) (users.User, error) {
	query := `
	SELECT id, name, username, COALESCE(age, 0), email, password, profile_pic, created_at
	FROM users WHERE id = $1
	`

	return p.scanUser(p.Db.QueryRow(query, id))
}

func (p *Postgres) scanUser(row *sql.Row) (users.User, error) {
	var u users.User
	var id int
	var createdAt time.Time

	err := row.Scan(&id, &u.Name, &u.Username, &u.Age, &u.Email, &u.Password, &u.ProfilePic, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, storage.ErrNotFound
		}
		return users.User{}, err
	}

	u.ID = fmt.Sprintf("%d", id)
	u.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return u, nil
}

func (p *Postgres) SetProfilePic(userID, objectKey string) error {
	result, err := p.Db.Exec(`UPDATE users SET profile_pic = $1 WHERE id = $2`, objectKey, userID)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (p *Postgres) ProfilePicKeys() ([]string, error) {
	rows, err := p.Db.Query(`SELECT profile_pic FROM users WHERE profile_pic <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

func (p *Postgres) CreatePost(userID, content string) (string, error) {
	var postID int
	query := `
	INSERT INTO posts (user_id, content)
	VALUES ($1, $2)
	RETURNING id
	`

	err := p.Db.QueryRow(query, userID, content).Scan(&postID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", postID), nil
}

func (p *Postgres) GetPostByID(id string) (types.Post, error) {
	query := `
	SELECT p.id, p.user_id, u.username, u.profile_pic, p.content, p.created_at,
		(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.user_id
	WHERE p.id = $1
	`

	var post types.Post
	var postID, userID int
	var createdAt time.Time

	err := p.Db.QueryRow(query, id).Scan(&postID, &userID, &post.Username, &post.ProfilePicURL, &post.Content, &createdAt, &post.LikeCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, storage.ErrNotFound
		}
		return types.Post{}, err
	}

	post.ID = fmt.Sprintf("%d", postID)
	post.UserID = fmt.Sprintf("%d", userID)
	post.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return post, nil
}

const postListQuery = `
	SELECT p.id, p.user_id, u.username, u.profile_pic, p.content, p.created_at,
		(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id),
		EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1)
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

func (p *Postgres) GetAllPosts(viewerID string) ([]types.Post, error) {
	query := postListQuery + ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := p.Db.Query(query, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (p *Postgres) GetPostsByUser(userID, viewerID string) ([]types.Post, error) {
	query := postListQuery + ` WHERE p.user_id = $2 ORDER BY p.created_at DESC, p.id DESC`

	rows, err := p.Db.Query(query, viewerID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows *sql.Rows) ([]types.Post, error) {
	var posts []types.Post
	for rows.Next() {
		var post types.Post
		var postID, userID int
		var createdAt time.Time

		err := rows.Scan(&postID, &userID, &post.Username, &post.ProfilePicURL, &post.Content, &createdAt, &post.LikeCount, &post.LikedByMe)
		if err != nil {
			return nil, err
		}

		post.ID = fmt.Sprintf("%d", postID)
		post.UserID = fmt.Sprintf("%d", userID)
		post.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (p *Postgres) UpdatePostContent(postID, content string) error {
	result, err := p.Db.Exec(`UPDATE posts SET content = $1 WHERE id = $2`, content, postID)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (p *Postgres) DeletePost(postID string) error {
	result, err := p.Db.Exec(`DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// TogglePostLike flips the (post, user) like membership in a single statement.
// The delete and the conditional insert share one snapshot, so concurrent
// toggles by different users land as independent rows and cannot overwrite
// each other.
func (p *Postgres) TogglePostLike(postID, userID string) (bool, int, error) {
	query := `
	WITH removed AS (
		DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2 RETURNING 1
	), added AS (
		INSERT INTO post_likes (post_id, user_id)
		SELECT $1, $2 WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT DO NOTHING
		RETURNING 1
	)
	SELECT (SELECT COUNT(*) FROM added)
	`

	var added int
	err := p.Db.QueryRow(query, postID, userID).Scan(&added)
	if err != nil {
		return false, 0, err
	}

	var count int
	err = p.Db.QueryRow(`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return false, 0, err
	}

	return added == 1, count, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
