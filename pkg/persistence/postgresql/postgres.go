// Package postgresql provides the PostgreSQL persistence implementation.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/launchflow/launchflow/pkg/models"
	"github.com/launchflow/launchflow/pkg/persistence"
	"github.com/launchflow/launchflow/pkg/persistence/sqlbase"
	"github.com/launchflow/launchflow/pkg/protocol"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
)

var _ persistence.Persistence = (*Persistence)(nil)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	projectRepo   *ProjectRepository
}

// NewPersistence connects to databaseURL and brings the schema up to date.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger = logger.With("module", "postgresql")

	err = sqlbase.NewMigrationManager(logger, database, migrations()).RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:            database,
		logger:        logger,
		workflowRepo:  NewWorkflowRepository(database, logger),
		executionRepo: NewExecutionRepository(database, logger),
		projectRepo:   NewProjectRepository(database),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return p.workflowRepo.GetAll(ctx, false)
}

func (p *Persistence) EnabledWorkflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	return p.workflowRepo.GetAll(ctx, true)
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return p.workflowRepo.GetByID(ctx, id)
}

func (p *Persistence) SaveWorkflow(ctx context.Context, workflow *models.WorkflowDefinition) error {
	return p.workflowRepo.Save(ctx, workflow)
}

// DeleteWorkflow removes a definition; its execution logs are removed by cascade.
func (p *Persistence) DeleteWorkflow(ctx context.Context, id string) error {
	return p.workflowRepo.Delete(ctx, id)
}

func (p *Persistence) SaveExecutionLog(ctx context.Context, log *models.WorkflowExecutionLog) error {
	return p.executionRepo.Save(ctx, log)
}

func (p *Persistence) ExecutionLogs(ctx context.Context, workflowID string, limit int) ([]*models.WorkflowExecutionLog, error) {
	return p.executionRepo.GetByWorkflow(ctx, workflowID, limit)
}

func (p *Persistence) UpdateProjectStatus(ctx context.Context, projectID string, status string) error {
	return p.projectRepo.UpdateStatus(ctx, projectID, status)
}

func (p *Persistence) AssignProjectLead(ctx context.Context, projectID string, userID string) error {
	return p.projectRepo.AssignLead(ctx, projectID, userID)
}

func (p *Persistence) UpdateProjectField(ctx context.Context, projectID string, field string, value any) error {
	return p.projectRepo.UpdateField(ctx, projectID, field, value)
}

func (p *Persistence) CreateSystemComment(ctx context.Context, projectID string, text string, authorID string) error {
	return p.projectRepo.CreateSystemComment(ctx, projectID, text, authorID)
}

func (p *Persistence) CreateNotification(ctx context.Context, notification protocol.Notification) error {
	return p.projectRepo.CreateNotification(ctx, notification)
}
