package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tazhate/mealsbot/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			telegram_id INTEGER UNIQUE NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			user_id INTEGER PRIMARY KEY,
			meals_username TEXT NOT NULL DEFAULT '',
			meals_password TEXT NOT NULL DEFAULT '',
			frequency TEXT NOT NULL DEFAULT '',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			target_date TEXT NOT NULL,
			sent_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_user_date ON notifications(user_id, target_date)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// === Users ===

func (s *Storage) CreateUser(u *domain.User) error {
	res, err := s.db.Exec(
		`INSERT INTO users (telegram_id, name) VALUES (?, ?)`,
		u.TelegramID, u.Name,
	)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	u.ID = id
	u.CreatedAt = time.Now()
	return nil
}

func (s *Storage) GetUserByTelegramID(telegramID int64) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRow(
		`SELECT id, telegram_id, name, created_at FROM users WHERE telegram_id = ?`,
		telegramID,
	).Scan(&u.ID, &u.TelegramID, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *Storage) GetUserByID(id int64) (*domain.User, error) {
	u := &domain.User{}
	err := s.db.QueryRow(
		`SELECT id, telegram_id, name, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.TelegramID, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// ListUsers returns all registered users
func (s *Storage) ListUsers() ([]*domain.User, error) {
	rows, err := s.db.Query(`SELECT id, telegram_id, name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.TelegramID, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// === Settings ===

func (s *Storage) SaveCredentials(userID int64, username, password string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, meals_username, meals_password, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET
			meals_username = excluded.meals_username,
			meals_password = excluded.meals_password,
			updated_at = CURRENT_TIMESTAMP`,
		userID, username, password,
	)
	return err
}

func (s *Storage) SetFrequency(userID int64, freq domain.Frequency) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (user_id, frequency, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(user_id) DO UPDATE SET
			frequency = excluded.frequency,
			updated_at = CURRENT_TIMESTAMP`,
		userID, string(freq),
	)
	return err
}

// GetSettings returns nil without error when the user has no settings row yet.
func (s *Storage) GetSettings(userID int64) (*domain.Settings, error) {
	st := &domain.Settings{}
	var freq string
	err := s.db.QueryRow(
		`SELECT user_id, meals_username, meals_password, frequency, updated_at
		 FROM settings WHERE user_id = ?`,
		userID,
	).Scan(&st.UserID, &st.MealsUsername, &st.MealsPassword, &freq, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st.Frequency = domain.Frequency(freq)
	return st, nil
}

// === Notifications ===

// RecordNotification inserts a notification marker for (user, target date).
// Returns false if the marker already existed.
func (s *Storage) RecordNotification(userID int64, targetDate string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO notifications (user_id, target_date) VALUES (?, ?)`,
		userID, targetDate,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) WasNotified(userID int64, targetDate string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND target_date = ?`,
		userID, targetDate,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) ListNotifications(limit int) ([]*domain.Notification, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, target_date, sent_at FROM notifications
		 ORDER BY sent_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.TargetDate, &n.SentAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
