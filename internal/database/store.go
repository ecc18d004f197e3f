package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gira/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store: доступ к сущностям поверх gorm. Транзакция передаётся через
// context, поэтому все вызовы внутри InTx должны получать ctx из колбэка.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type txKey struct{}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// InTx runs fn in a transaction. Any error returned by fn rolls it back and
// is returned as is. Nested calls use savepoints.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

//
// ПРОЕКТЫ
//

func (s *Store) Project(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, wrapErr(fmt.Sprintf("get project %d", id), err)
	}
	return &p, nil
}

func (s *Store) Projects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	q := s.conn(ctx).
		Where("status <> ?", models.ProjectDeleted).
		Order("created_at desc").Order("id desc")

	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Name+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	projects := []models.Project{}
	if err := q.Find(&projects).Error; err != nil {
		return nil, wrapErr("list projects", err)
	}
	return projects, nil
}

// CountProjects считает все проекты, включая удалённые.
func (s *Store) CountProjects(ctx context.Context) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.Project{}).Count(&n).Error; err != nil {
		return 0, wrapErr("count projects", err)
	}
	return n, nil
}

func (s *Store) SaveProject(ctx context.Context, p *models.Project) error {
	return wrapErr("save project", s.conn(ctx).Omit(clause.Associations).Save(p).Error)
}

//
// ПОЛЬЗОВАТЕЛИ
//

func (s *Store) User(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, wrapErr(fmt.Sprintf("get user %d", id), err)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, wrapErr("get user "+username, err)
	}
	return &u, nil
}

// UserExists проверяет занятость username или email.
func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.User{}).
		Where("username = ? OR LOWER(email) = LOWER(?)", username, email).
		Count(&n).Error
	if err != nil {
		return false, wrapErr("check user", err)
	}
	return n > 0, nil
}

func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.conn(ctx).Order("username asc").Find(&users).Error; err != nil {
		return nil, wrapErr("list users", err)
	}
	return users, nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return wrapErr("save user", s.conn(ctx).Save(u).Error)
}

//
// СПРИНТЫ
//

func (s *Store) Sprint(ctx context.Context, id uint) (*models.Sprint, error) {
	var sp models.Sprint
	if err := s.conn(ctx).First(&sp, id).Error; err != nil {
		return nil, wrapErr(fmt.Sprintf("get sprint %d", id), err)
	}
	return &sp, nil
}

// Sprints возвращает спринты проекта в порядке создания. Без статусов
// возвращаются все.
func (s *Store) Sprints(ctx context.Context, projectID uint, statuses ...models.SprintStatus) ([]models.Sprint, error) {
	q := s.conn(ctx).Where("project_id = ?", projectID).Order("id asc")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	sprints := []models.Sprint{}
	if err := q.Find(&sprints).Error; err != nil {
		return nil, wrapErr("list sprints", err)
	}
	return sprints, nil
}

func (s *Store) CountSprints(ctx context.Context, projectID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Sprint{}).Where("project_id = ?", projectID).Count(&n).Error
	if err != nil {
		return 0, wrapErr("count sprints", err)
	}
	return n, nil
}

func (s *Store) SaveSprint(ctx context.Context, sp *models.Sprint) error {
	err := s.conn(ctx).Omit(clause.Associations).Save(sp).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("save sprint: %w: %w", models.ErrConflictingActiveSprint, err)
	}
	return wrapErr("save sprint", err)
}

// ActivateSprint переводит спринт в active одним условным UPDATE, так что
// из двух одновременных стартов проходит только один. Второй активный
// спринт в проекте отсекает частичный уникальный индекс.
func (s *Store) ActivateSprint(ctx context.Context, id uint, start, end time.Time) error {
	res := s.conn(ctx).Model(&models.Sprint{}).
		Where("id = ? AND status = ?", id, models.SprintPlanning).
		Updates(map[string]any{
			"status":     models.SprintActive,
			"start_date": start,
			"end_date":   end,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return fmt.Errorf("activate sprint %d: %w: %w", id, models.ErrConflictingActiveSprint, res.Error)
		}
		return wrapErr(fmt.Sprintf("activate sprint %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("activate sprint %d: %w", id, models.ErrInvalidTransition)
	}
	return nil
}

//
// ИСТОРИИ
//

func (s *Store) Story(ctx context.Context, id uint) (*models.Story, error) {
	var st models.Story
	if err := s.conn(ctx).First(&st, id).Error; err != nil {
		return nil, wrapErr(fmt.Sprintf("get story %d", id), err)
	}
	return &st, nil
}

func (s *Store) Stories(ctx context.Context, f models.StoryFilter) ([]models.Story, error) {
	q := s.conn(ctx).Order("priority desc").Order("id asc")

	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	switch {
	case f.Backlog:
		q = q.Where("sprint_id IS NULL")
	case f.SprintID != nil:
		q = q.Where("sprint_id = ?", *f.SprintID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	stories := []models.Story{}
	if err := q.Find(&stories).Error; err != nil {
		return nil, wrapErr("list stories", err)
	}
	return stories, nil
}

func (s *Store) SaveStory(ctx context.Context, st *models.Story) error {
	return wrapErr("save story", s.conn(ctx).Save(st).Error)
}

// wrapErr приводит ошибки gorm/драйвера к видам из models, сохраняя
// исходную ошибку в цепочке.
func wrapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, models.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStorageFailure, err)
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
