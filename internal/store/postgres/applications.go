package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"admissions/internal/domain/application"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationColumns = `id, kind, name, email, mobile, city, state, class, stream,
	grade10, grade12, exam_date, graduation_score, graduation_stream, passing_year,
	payment_status, payment_id, order_id, application_date`

// applicationRepository implements ApplicationRepository over pgx
type applicationRepository struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) *applicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, a *application.Application) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		a.ID, string(a.Kind), a.Name, a.Email, a.Mobile, a.City, a.State, a.Class, a.Stream,
		a.Grade10, a.Grade12, a.ExamDate, a.GraduationScore, a.GraduationStream, a.PassingYear,
		string(a.PaymentStatus), a.PaymentID, a.OrderID, a.ApplicationDate)
	return translate("create_application", err, "")
}

func (r *applicationRepository) FindByID(ctx context.Context, kind application.Kind, id uuid.UUID) (*application.Application, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		  FROM applications
		 WHERE kind = $1 AND id = $2`, string(kind), id)
	a, err := scanApplication(row)
	if err != nil {
		return nil, translate("find_application", err, notFoundMessage(kind))
	}
	return a, nil
}

func (r *applicationRepository) List(ctx context.Context, kind application.Kind, q application.ListQuery) ([]*application.Application, int, error) {
	where, args := listFilter(kind, q)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM applications WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, translate("count_applications", err, "")
	}

	dir := "DESC"
	if !q.Descending() {
		dir = "ASC"
	}
	args = append(args, q.Limit, q.Offset())
	sql := fmt.Sprintf(`
		SELECT %s
		  FROM applications
		 WHERE %s
		 ORDER BY %s %s, id
		 LIMIT $%d OFFSET $%d`,
		applicationColumns, where, q.SortColumn(), dir, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, translate("list_applications", err, "")
	}
	defer rows.Close()

	var out []*application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, translate("list_applications", err, "")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate("list_applications", err, "")
	}
	return out, total, nil
}

// listFilter builds the WHERE clause shared by the count and page queries.
func listFilter(kind application.Kind, q application.ListQuery) (string, []any) {
	clauses := []string{"kind = $1"}
	args := []any{string(kind)}

	if q.PaymentStatus != "" {
		args = append(args, string(q.PaymentStatus))
		clauses = append(clauses, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		var ors []string
		for _, f := range application.SearchFields(kind) {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", f, n))
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (r *applicationRepository) Delete(ctx context.Context, kind application.Kind, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return translate("delete_application", err, "")
	}
	if tag.RowsAffected() == 0 {
		return translate("delete_application", pgx.ErrNoRows, notFoundMessage(kind))
	}
	return nil
}

// ApplyPatch locks the row so concurrent transitions serialize; only the
// first one observes the pending status.
func (r *applicationRepository) ApplyPatch(ctx context.Context, kind application.Kind, id uuid.UUID, p application.Patch) (application.Status, *application.Application, error) {
	var (
		prev    application.Status
		updated *application.Application
	)
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		a, err := scanApplication(tx.QueryRow(ctx, `
			SELECT `+applicationColumns+`
			  FROM applications
			 WHERE kind = $1 AND id = $2
			   FOR UPDATE`, string(kind), id))
		if err != nil {
			return err
		}
		prev = a.PaymentStatus

		if err := a.Apply(p); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE applications
			   SET name = $3, email = $4, mobile = $5, city = $6, state = $7, class = $8,
			       stream = $9, grade10 = $10, grade12 = $11, exam_date = $12,
			       graduation_score = $13, graduation_stream = $14, passing_year = $15,
			       payment_status = $16, payment_id = $17, order_id = $18, updated_at = $19
			 WHERE kind = $1 AND id = $2`,
			string(kind), id, a.Name, a.Email, a.Mobile, a.City, a.State, a.Class,
			a.Stream, a.Grade10, a.Grade12, a.ExamDate,
			a.GraduationScore, a.GraduationStream, a.PassingYear,
			string(a.PaymentStatus), a.PaymentID, a.OrderID, time.Now())
		if err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return "", nil, translate("update_application", err, notFoundMessage(kind))
	}
	return prev, updated, nil
}

func (r *applicationRepository) Stats(ctx context.Context, kind application.Kind) (application.Stats, error) {
	const op = "application_stats"
	var s application.Stats
	k := string(kind)

	err := r.db.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE payment_status = 'completed'),
		       count(*) FILTER (WHERE payment_status = 'pending')
		  FROM applications
		 WHERE kind = $1`, k).Scan(&s.TotalApplications, &s.CompletedPayments, &s.PendingPayments)
	if err != nil {
		return s, translate(op, err, "")
	}

	if s.StreamStats, err = r.countBy(ctx, `
		SELECT stream, count(*) FROM applications WHERE kind = $1
		 GROUP BY stream ORDER BY count(*) DESC, stream`, k); err != nil {
		return s, translate(op, err, "")
	}
	if s.StateStats, err = r.countBy(ctx, `
		SELECT state, count(*) FROM applications WHERE kind = $1
		 GROUP BY state ORDER BY count(*) DESC, state LIMIT 10`, k); err != nil {
		return s, translate(op, err, "")
	}
	if s.MonthlyStats, err = r.monthly(ctx, k); err != nil {
		return s, translate(op, err, "")
	}

	if kind == application.KindPG {
		if s.GraduationStreamStats, err = r.countBy(ctx, `
			SELECT graduation_stream, count(*) FROM applications WHERE kind = $1
			 GROUP BY graduation_stream ORDER BY count(*) DESC, graduation_stream`, k); err != nil {
			return s, translate(op, err, "")
		}
		if s.PassingYearStats, err = r.countBy(ctx, `
			SELECT passing_year, count(*) FROM applications WHERE kind = $1
			 GROUP BY passing_year ORDER BY passing_year DESC`, k); err != nil {
			return s, translate(op, err, "")
		}
	}
	return s, nil
}

func (r *applicationRepository) countBy(ctx context.Context, sql string, args ...any) ([]application.CountStat, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []application.CountStat{}
	for rows.Next() {
		var c application.CountStat
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *applicationRepository) monthly(ctx context.Context, kind string) ([]application.MonthStat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT EXTRACT(YEAR FROM application_date)::int  AS y,
		       EXTRACT(MONTH FROM application_date)::int AS m,
		       count(*)
		  FROM applications
		 WHERE kind = $1
		 GROUP BY y, m
		 ORDER BY y, m
		 LIMIT 12`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []application.MonthStat{}
	for rows.Next() {
		var m application.MonthStat
		if err := rows.Scan(&m.Year, &m.Month, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// scanApplication scans one row in applicationColumns order.
func scanApplication(row pgx.Row) (*application.Application, error) {
	var a application.Application
	var kind, status string
	err := row.Scan(
		&a.ID, &kind, &a.Name, &a.Email, &a.Mobile, &a.City, &a.State, &a.Class, &a.Stream,
		&a.Grade10, &a.Grade12, &a.ExamDate, &a.GraduationScore, &a.GraduationStream, &a.PassingYear,
		&status, &a.PaymentID, &a.OrderID, &a.ApplicationDate)
	if err != nil {
		return nil, err
	}
	a.Kind = application.Kind(kind)
	a.PaymentStatus = application.Status(status)
	return &a, nil
}

func notFoundMessage(kind application.Kind) string {
	return kind.Label() + " Application not found"
}
