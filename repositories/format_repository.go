package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrFormatNotFound      = errors.New("format not found")
	ErrFormatSlugConflict  = errors.New("format slug conflict")
	ErrFormatInUse         = errors.New("format is in use by a league")
	ErrPhaseConfigNotFound = errors.New("phase config not found")
)

type FormatRepository interface {
	// Create inserts the format with its phases and their tiebreak rules.
	// Run it inside a transaction: it issues one statement per row.
	Create(ctx context.Context, exec SQLExecutor, format *models.LeagueFormat) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueFormat, error)
	GetBySlug(ctx context.Context, slug string) (*models.LeagueFormat, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, templatesOnly bool) ([]models.LeagueFormat, error)
	UpdateMetadata(ctx context.Context, format *models.LeagueFormat) error
	Delete(ctx context.Context, id int) error
	CountLeaguesUsing(ctx context.Context, id int) (int, error)
	GetPhaseConfig(ctx context.Context, exec SQLExecutor, id int) (*models.PhaseConfig, error)
}

type postgresFormatRepository struct {
	db *sql.DB
}

func NewPostgresFormatRepository(db *sql.DB) FormatRepository {
	return &postgresFormatRepository{db: db}
}

const formatColumns = `id, name, slug, type, description, is_template, created_at, updated_at`

const phaseConfigColumns = `id, format_id, name, phase_order, type, teams_count, groups_count, teams_per_group,
	has_home_away, has_extra_time, has_penalties, has_away_goal, advancing_teams, advancing_from`

func (r *postgresFormatRepository) Create(ctx context.Context, exec SQLExecutor, format *models.LeagueFormat) error {
	executor := executorOr(exec, r.db)

	query := `
		INSERT INTO league_formats (name, slug, type, description, is_template)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query,
		format.Name, format.Slug, format.Type, format.Description, format.IsTemplate,
	).Scan(&format.ID, &format.CreatedAt, &format.UpdatedAt)
	if err != nil {
		if pqErrorIs(err, pqUniqueViolation, "league_formats_slug_key") {
			return ErrFormatSlugConflict
		}
		return fmt.Errorf("failed to insert format: %w", err)
	}

	for i := range format.Phases {
		phase := &format.Phases[i]
		phase.FormatID = format.ID
		if err := r.insertPhaseConfig(ctx, executor, phase); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresFormatRepository) insertPhaseConfig(ctx context.Context, exec SQLExecutor, phase *models.PhaseConfig) error {
	query := `
		INSERT INTO phase_configs (format_id, name, phase_order, type, teams_count, groups_count, teams_per_group,
			has_home_away, has_extra_time, has_penalties, has_away_goal, advancing_teams, advancing_from)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := exec.QueryRowContext(ctx, query,
		phase.FormatID, phase.Name, phase.Order, phase.Type, phase.TeamsCount, phase.GroupsCount, phase.TeamsPerGroup,
		phase.HasHomeAway, phase.HasExtraTime, phase.HasPenalties, phase.HasAwayGoal, phase.AdvancingTeams, phase.AdvancingFrom,
	).Scan(&phase.ID)
	if err != nil {
		return fmt.Errorf("failed to insert phase config %q (order %d): %w", phase.Name, phase.Order, err)
	}

	for j := range phase.TiebreakRules {
		rule := &phase.TiebreakRules[j]
		rule.PhaseConfigID = phase.ID
		err := exec.QueryRowContext(ctx,
			`INSERT INTO tiebreak_rule_configs (phase_config_id, rule_order, criterion) VALUES ($1, $2, $3) RETURNING id`,
			rule.PhaseConfigID, rule.Order, rule.Criterion,
		).Scan(&rule.ID)
		if err != nil {
			return fmt.Errorf("failed to insert tiebreak rule %d for phase config %d: %w", rule.Order, phase.ID, err)
		}
	}
	return nil
}

func scanFormat(row rowScanner) (*models.LeagueFormat, error) {
	var f models.LeagueFormat
	var description sql.NullString
	err := row.Scan(&f.ID, &f.Name, &f.Slug, &f.Type, &description, &f.IsTemplate, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		f.Description = &description.String
	}
	return &f, nil
}

func (r *postgresFormatRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueFormat, error) {
	executor := executorOr(exec, r.db)
	row := executor.QueryRowContext(ctx, `SELECT `+formatColumns+` FROM league_formats WHERE id = $1`, id)
	return r.loadOne(ctx, executor, row)
}

func (r *postgresFormatRepository) GetBySlug(ctx context.Context, slug string) (*models.LeagueFormat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+formatColumns+` FROM league_formats WHERE slug = $1`, slug)
	return r.loadOne(ctx, r.db, row)
}

func (r *postgresFormatRepository) loadOne(ctx context.Context, exec SQLExecutor, row *sql.Row) (*models.LeagueFormat, error) {
	format, err := scanFormat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFormatNotFound
		}
		return nil, err
	}

	phases, err := r.loadPhases(ctx, exec, []int{format.ID})
	if err != nil {
		return nil, err
	}
	format.Phases = phases[format.ID]
	if format.Phases == nil {
		format.Phases = []models.PhaseConfig{}
	}
	return format, nil
}

func (r *postgresFormatRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM league_formats WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresFormatRepository) List(ctx context.Context, templatesOnly bool) ([]models.LeagueFormat, error) {
	query := `SELECT ` + formatColumns + ` FROM league_formats`
	if templatesOnly {
		query += ` WHERE is_template = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	formats := make([]models.LeagueFormat, 0)
	ids := make([]int, 0)
	for rows.Next() {
		f, scanErr := scanFormat(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		formats = append(formats, *f)
		ids = append(ids, f.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return formats, nil
	}

	phases, err := r.loadPhases(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range formats {
		formats[i].Phases = phases[formats[i].ID]
		if formats[i].Phases == nil {
			formats[i].Phases = []models.PhaseConfig{}
		}
	}
	return formats, nil
}

// loadPhases returns the phase configs of the given formats, keyed by format
// ID, each ordered by phase order with rules ordered by rule order.
func (r *postgresFormatRepository) loadPhases(ctx context.Context, exec SQLExecutor, formatIDs []int) (map[int][]models.PhaseConfig, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT `+phaseConfigColumns+` FROM phase_configs WHERE format_id = ANY($1) ORDER BY format_id, phase_order`,
		int64s(formatIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load phase configs: %w", err)
	}
	defer rows.Close()

	byFormat := make(map[int][]models.PhaseConfig)
	phaseIDs := make([]int, 0)
	for rows.Next() {
		p, scanErr := scanPhaseConfig(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		byFormat[p.FormatID] = append(byFormat[p.FormatID], *p)
		phaseIDs = append(phaseIDs, p.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(phaseIDs) == 0 {
		return byFormat, nil
	}

	rules, err := loadTiebreakRules(ctx, exec, phaseIDs)
	if err != nil {
		return nil, err
	}
	for formatID, phases := range byFormat {
		for i := range phases {
			phases[i].TiebreakRules = rules[phases[i].ID]
			if phases[i].TiebreakRules == nil {
				phases[i].TiebreakRules = []models.TiebreakRuleConfig{}
			}
		}
		byFormat[formatID] = phases
	}
	return byFormat, nil
}

func loadTiebreakRules(ctx context.Context, exec SQLExecutor, phaseConfigIDs []int) (map[int][]models.TiebreakRuleConfig, error) {
	rows, err := exec.QueryContext(ctx, `
		SELECT id, phase_config_id, rule_order, criterion
		FROM tiebreak_rule_configs
		WHERE phase_config_id = ANY($1)
		ORDER BY phase_config_id, rule_order`, int64s(phaseConfigIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load tiebreak rules: %w", err)
	}
	defer rows.Close()

	rules := make(map[int][]models.TiebreakRuleConfig)
	for rows.Next() {
		var rule models.TiebreakRuleConfig
		if err := rows.Scan(&rule.ID, &rule.PhaseConfigID, &rule.Order, &rule.Criterion); err != nil {
			return nil, err
		}
		rules[rule.PhaseConfigID] = append(rules[rule.PhaseConfigID], rule)
	}
	return rules, rows.Err()
}

func scanPhaseConfig(row rowScanner) (*models.PhaseConfig, error) {
	var p models.PhaseConfig
	var teamsCount, groupsCount, teamsPerGroup, advancingTeams sql.NullInt64
	var advancingFrom sql.NullString
	err := row.Scan(
		&p.ID, &p.FormatID, &p.Name, &p.Order, &p.Type,
		&teamsCount, &groupsCount, &teamsPerGroup,
		&p.HasHomeAway, &p.HasExtraTime, &p.HasPenalties, &p.HasAwayGoal,
		&advancingTeams, &advancingFrom,
	)
	if err != nil {
		return nil, err
	}
	p.TeamsCount = nullIntPtr(teamsCount)
	p.GroupsCount = nullIntPtr(groupsCount)
	p.TeamsPerGroup = nullIntPtr(teamsPerGroup)
	p.AdvancingTeams = nullIntPtr(advancingTeams)
	if advancingFrom.Valid {
		p.AdvancingFrom = &advancingFrom.String
	}
	return &p, nil
}

func (r *postgresFormatRepository) GetPhaseConfig(ctx context.Context, exec SQLExecutor, id int) (*models.PhaseConfig, error) {
	executor := executorOr(exec, r.db)
	row := executor.QueryRowContext(ctx, `SELECT `+phaseConfigColumns+` FROM phase_configs WHERE id = $1`, id)
	phase, err := scanPhaseConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseConfigNotFound
		}
		return nil, err
	}

	rules, err := loadTiebreakRules(ctx, executor, []int{phase.ID})
	if err != nil {
		return nil, err
	}
	phase.TiebreakRules = rules[phase.ID]
	return phase, nil
}

func (r *postgresFormatRepository) UpdateMetadata(ctx context.Context, format *models.LeagueFormat) error {
	query := `
		UPDATE league_formats
		SET name = $1, description = $2, is_template = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		format.Name, format.Description, format.IsTemplate, format.ID,
	).Scan(&format.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFormatNotFound
		}
		return err
	}
	return nil
}

func (r *postgresFormatRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM league_formats WHERE id = $1`, id)
	if err != nil {
		// a league created the reference between the count and the delete
		if pqErrorIs(err, pqForeignKeyViolation, "leagues_format_id_fkey") {
			return ErrFormatInUse
		}
		return err
	}
	return checkAffectedRows(result, ErrFormatNotFound)
}

func (r *postgresFormatRepository) CountLeaguesUsing(ctx context.Context, id int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leagues WHERE format_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
