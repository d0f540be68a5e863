package mysql

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/VividCortex/mysqlerr"
	"github.com/go-sql-driver/mysql"

	"hpmigrate/internal/ddl"
	"hpmigrate/internal/storage"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	})
	return &Repository{db: db, cfg: Config{Table: "hp.charge_long"}}, mock
}

func TestTableExists(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("hp", "charge_long").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.tables")).
		WithArgs("", "charge_long").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	ok, err := r.TableExists(context.Background(), "hp.charge_long")
	if err != nil || !ok {
		t.Fatalf("TableExists(hp.charge_long) = %v, %v; want true, nil", ok, err)
	}
	ok, err = r.TableExists(context.Background(), "charge_long")
	if err != nil || ok {
		t.Fatalf("TableExists(charge_long) = %v, %v; want false, nil", ok, err)
	}
}

func TestColumns(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("hp", "charge_long").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type", "nullable"}).
			AddRow("file_name", "text", true).
			AddRow("code_2", "varchar", false))

	got, err := r.Columns(context.Background(), "hp.charge_long")
	if err != nil {
		t.Fatalf("Columns error: %v", err)
	}
	want := []ddl.ColumnInfo{
		{Name: "file_name", DataType: "text", Nullable: true},
		{Name: "code_2", DataType: "varchar", Nullable: false},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns = %+v, want %+v", got, want)
	}
}

func TestColumns_QueryError(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WillReturnError(&mysql.MySQLError{Number: mysqlerr.ER_TABLEACCESS_DENIED_ERROR, Message: "SELECT command denied to user 'etl'@'%'"})

	_, err := r.Columns(context.Background(), "hp.charge_long")
	if !errors.Is(err, storage.ErrPermission) {
		t.Fatalf("Columns error = %v, want ErrPermission", err)
	}
}

func TestExecTx_StopsAtFirstError(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	native := &mysql.MySQLError{Number: mysqlerr.ER_NO_SUCH_TABLE, Message: "Table 'hp.charge_long' doesn't exist"}
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE `hp`.`charge_long`")).WillReturnError(native)

	err := r.ExecTx(context.Background(), []string{
		"ALTER TABLE `hp`.`charge_long`\n  ADD COLUMN `plan_name` TEXT NULL;",
		"SELECT 1",
	})
	if !errors.Is(err, storage.ErrTableNotFound) {
		t.Fatalf("ExecTx error = %v, want ErrTableNotFound", err)
	}
	if err.Error() != native.Error() {
		t.Fatalf("error text = %q, want engine text %q", err.Error(), native.Error())
	}
}

func TestExecTx_RunsInOrder(t *testing.T) {
	t.Parallel()

	r, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE SCHEMA IF NOT EXISTS `hp`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS `hp`.`charge_long`")).WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.ExecTx(context.Background(), []string{
		"CREATE SCHEMA IF NOT EXISTS `hp`;",
		"CREATE TABLE IF NOT EXISTS `hp`.`charge_long` (\n  `file_name` TEXT NULL\n);",
	})
	if err != nil {
		t.Fatalf("ExecTx error: %v", err)
	}
	if err := r.ExecTx(context.Background(), nil); err != nil {
		t.Fatalf("ExecTx(nil) = %v", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		number uint16
		want   error
	}{
		{1146, storage.ErrTableNotFound},
		{1049, storage.ErrTableNotFound},
		{1064, storage.ErrTypeRejected},
		{1142, storage.ErrPermission},
		{1044, storage.ErrPermission},
		{1045, storage.ErrPermission},
	}
	for _, tt := range tests {
		err := classify(&mysql.MySQLError{Number: tt.number, Message: "x"})
		if !errors.Is(err, tt.want) {
			t.Errorf("classify(%d) = %v, want class %v", tt.number, err, tt.want)
		}
	}

	dup := &mysql.MySQLError{Number: mysqlerr.ER_DUP_FIELDNAME, Message: "Duplicate column name 'plan_name'"}
	if err := classify(dup); err != error(dup) {
		t.Errorf("unclassified error was wrapped: %v", err)
	}
}

// Not parallel: swaps the package-level newRepository hook.
func TestAdapterRegistration(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var closed int32
	var gotCfg Config
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { atomic.AddInt32(&closed, 1) }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:  "mysql",
		DSN:   "etl:secret@tcp(localhost:3306)/hp",
		Table: "hp.charge_long",
	})
	if err != nil {
		t.Fatalf("storage.New error: %v", err)
	}
	if gotCfg.DSN != "etl:secret@tcp(localhost:3306)/hp" {
		t.Errorf("cfg.DSN = %q", gotCfg.DSN)
	}
	repo.Close()
	if atomic.LoadInt32(&closed) != 1 {
		t.Fatalf("Close() did not invoke closeFn")
	}
	if _, err := storage.LookupDDL("mysql"); err != nil {
		t.Fatalf("mysql dialect not registered: %v", err)
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"}); err == nil {
		t.Fatalf("expected DSN error")
	}
}
