package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/transform"
)

// ============================================================================
// Fake transactions
// ============================================================================

type fakeTx struct {
	pgx.Tx

	db         *fakeDB
	dupPlate   string // inserting this plate fails with a unique violation
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	for _, a := range args {
		if text, ok := a.(pgtype.Text); ok && tx.dupPlate != "" && text.String == tx.dupPlate {
			tx.db.calls = append(tx.db.calls, fakeCall{sql, args})
			return nil, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"vehicles_plate_key\""}
		}
	}
	return tx.db.Query(ctx, sql, args...)
}

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return tx.db.QueryRow(ctx, sql, args...)
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeTxDB struct {
	*fakeDB
	tx *fakeTx
}

func (f *fakeTxDB) Begin(context.Context) (pgx.Tx, error) {
	return f.tx, nil
}

func newFakeTxDB(dupPlate string) *fakeTxDB {
	db := &fakeDB{columns: vehicleColumns, rows: vehicleRow()}
	return &fakeTxDB{fakeDB: db, tx: &fakeTx{db: db, dupPlate: dupPlate}}
}

func (f *fakeTxDB) sqlCalls(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c.sql, prefix) {
			n++
		}
	}
	return n
}

// ============================================================================
// Import
// ============================================================================

// vehiclesCSV is a Windows-1252 export with a title line, a semicolon
// separator and one unknown column.
const vehiclesCSV = "Relat\xf3rio de ve\xedculos;;\r\n" +
	"Placa;Modelo;Ano;Situa\xe7\xe3o;Cor\r\n" +
	"abc-1d23;Onix;2022;available;prata\r\n" +
	";;;;\r\n" +
	"12;Gol;;;\r\n" +
	"DEF-4G56;Uno;abc;;\r\n" +
	"DUP0A00;Uno;;;\r\n"

func TestService_Import(t *testing.T) {
	registerTestVehicles(t)
	db := newFakeTxDB("DUP0A00")

	got, err := NewService(db).Import(companyCtx(), "vehicles", strings.NewReader(vehiclesCSV), ImportOptions{FileName: "frota.csv"})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	want := &ImportResult{
		Entity:    "vehicles",
		FileName:  "frota.csv",
		TotalRows: 4,
		Inserted:  1,
		Skipped:   3,
		Ignored:   []string{"Cor"},
		FailedRows: []FailedRow{
			{Line: 5, Reason: "Placa: placa inválida", Fields: map[string]string{"plate": "placa inválida"}},
			{Line: 6, Reason: "Ano: número inteiro inválido", Fields: map[string]string{"year": "número inteiro inválido"}},
			{Line: 7, Reason: "Já existe um registro com este valor"},
		},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(ImportResult{}, "Duration")); diff != "" {
		t.Errorf("Import() mismatch (-want +got):\n%s", diff)
	}

	if !db.tx.committed {
		t.Error("import was not committed")
	}
	if n := db.sqlCalls("ROLLBACK TO SAVEPOINT"); n != 1 {
		t.Errorf("savepoint rollbacks = %d, want 1", n)
	}
	if n := db.sqlCalls("RELEASE SAVEPOINT"); n != 1 {
		t.Errorf("savepoint releases = %d, want 1", n)
	}
}

func TestService_ImportDryRun(t *testing.T) {
	registerTestVehicles(t)
	db := newFakeTxDB("")

	csvData := "placa,modelo\nABC1D23,Onix\nBRA2E19,Kwid\n"
	got, err := NewService(db).Import(companyCtx(), "vehicles", strings.NewReader(csvData), ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got.Inserted != 2 || !got.DryRun {
		t.Errorf("Inserted = %d, DryRun = %v, want 2 and true", got.Inserted, got.DryRun)
	}
	if db.tx.committed || !db.tx.rolledBack {
		t.Errorf("committed = %v, rolledBack = %v, want a rollback", db.tx.committed, db.tx.rolledBack)
	}
}

func TestService_ImportErrors(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		db      DBTX
		entity  string
		csv     string
		maxSize int64
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown entity",
			ctx:     companyCtx(),
			db:      newFakeTxDB(""),
			entity:  "boats",
			csv:     "Placa\n",
			wantErr: ErrUnknownEntity,
		},
		{
			name:    "no company",
			ctx:     context.Background(),
			db:      newFakeTxDB(""),
			entity:  "vehicles",
			csv:     "Placa;Modelo\n",
			wantErr: ErrNoCompany,
		},
		{
			name:    "required column missing",
			ctx:     companyCtx(),
			db:      newFakeTxDB(""),
			entity:  "vehicles",
			csv:     "Modelo;Ano\nOnix;2022\n",
			wantErr: ErrImportHeader,
			wantMsg: "missing Placa",
		},
		{
			name:    "no header at all",
			ctx:     companyCtx(),
			db:      newFakeTxDB(""),
			entity:  "vehicles",
			csv:     "a;b\nc;d\n",
			wantErr: ErrImportHeader,
		},
		{
			name:    "file over the limit",
			ctx:     companyCtx(),
			db:      newFakeTxDB(""),
			entity:  "vehicles",
			csv:     "Placa;Modelo\n" + strings.Repeat("ABC1D23;Onix\n", 20),
			maxSize: 40,
			wantErr: ErrImportTooLarge,
		},
		{
			name:    "database without transactions",
			ctx:     companyCtx(),
			db:      &fakeDB{},
			entity:  "vehicles",
			csv:     "Placa;Modelo\n",
			wantMsg: "does not support transactions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registerTestVehicles(t)

			_, err := NewService(tt.db).Import(tt.ctx, tt.entity, strings.NewReader(tt.csv), ImportOptions{MaxSize: tt.maxSize})
			if err == nil {
				t.Fatal("Import() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Import() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Import() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestMapImportHeader(t *testing.T) {
	def := testVehicleDef()

	cols, ignored := mapImportHeader([]string{" PLACA ", "", "Situacao", "mileage", "Placa", "Observação"}, def)

	wantCols := []importColumn{{index: 0, field: "plate"}, {index: 2, field: "status"}, {index: 3, field: "mileage"}}
	if diff := cmp.Diff(wantCols, cols, cmp.AllowUnexported(importColumn{})); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Placa", "Observação"}, ignored); diff != "" {
		t.Errorf("ignored (-want +got):\n%s", diff)
	}
}

func TestHeaderKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Data do Serviço", "data do servico"},
		{"service_date", "service date"},
		{"  Razão   social ", "razao social"},
	}
	for _, tt := range tests {
		if got := headerKey(tt.in); got != tt.want {
			t.Errorf("headerKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct{ in, want string }{
		{`  Onix `, "Onix"},
		{`="01234567890"`, "01234567890"},
		{`= "123" `, `= "123"`},
		{`D'Ávila`, `D'Ávila`},
		{`="`, `="`},
	}
	for _, tt := range tests {
		if got := CleanCell(tt.in); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Reader
// ============================================================================

func TestNewImportReader(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantText  string
		wantDelim rune
	}{
		{
			name:      "utf-8 with bom",
			in:        "\xef\xbb\xbfNome;Situação\nJoão;ok\n",
			wantText:  "Nome;Situação\nJoão;ok\n",
			wantDelim: ';',
		},
		{
			name:      "windows-1252",
			in:        "Nome,Situa\xe7\xe3o\nJo\xe3o,\x93ok\x94\n",
			wantText:  "Nome,Situação\nJoão,“ok”\n",
			wantDelim: ',',
		},
		{
			name:      "tab separated",
			in:        "a\tb\tc\n1\t2\t3\n",
			wantText:  "a\tb\tc\n1\t2\t3\n",
			wantDelim: '\t',
		},
		{
			name:      "empty",
			in:        "",
			wantText:  "",
			wantDelim: ',',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, delim, err := newImportReader(strings.NewReader(tt.in), 0)
			if err != nil {
				t.Fatalf("newImportReader() error = %v", err)
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("read error = %v", err)
			}
			if string(got) != tt.wantText {
				t.Errorf("text = %q, want %q", got, tt.wantText)
			}
			if delim != tt.wantDelim {
				t.Errorf("delimiter = %q, want %q", delim, tt.wantDelim)
			}
		})
	}
}

func TestWindows1252Fallback_SplitSequence(t *testing.T) {
	var tr windows1252Fallback
	dst := make([]byte, 16)

	// The first byte of a UTF-8 "ç" must wait for the rest of the sequence.
	nDst, nSrc, err := tr.Transform(dst, []byte("a\xc3"), false)
	if !errors.Is(err, transform.ErrShortSrc) || nDst != 1 || nSrc != 1 {
		t.Errorf("Transform() = %d, %d, %v, want 1, 1, ErrShortSrc", nDst, nSrc, err)
	}

	nDst, nSrc, err = tr.Transform(dst, []byte("\xc3\xa7"), false)
	if err != nil || string(dst[:nDst]) != "ç" || nSrc != 2 {
		t.Errorf("Transform() = %q, %d, %v, want ç", dst[:nDst], nSrc, err)
	}

	// At EOF a lone lead byte is Windows-1252.
	nDst, _, err = tr.Transform(dst, []byte("\xc3"), true)
	if err != nil || string(dst[:nDst]) != "Ã" {
		t.Errorf("Transform() at EOF = %q, %v, want Ã", dst[:nDst], err)
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		sample string
		want   rune
	}{
		{"a;b;c\n1,5;2,5;3\n", ';'},
		{"a,b,c", ','},
		{`"a;b;c",d`, ','},
		{"single", ','},
	}
	for _, tt := range tests {
		if got := sniffDelimiter([]byte(tt.sample)); got != tt.want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.sample, got, tt.want)
		}
	}
}

func TestLimitReader(t *testing.T) {
	exact := &limitReader{r: strings.NewReader("12345"), remaining: 5}
	if got, err := io.ReadAll(exact); err != nil || string(got) != "12345" {
		t.Errorf("exact size: got %q, %v", got, err)
	}

	over := &limitReader{r: strings.NewReader("123456"), remaining: 5}
	if _, err := io.ReadAll(over); !errors.Is(err, ErrImportTooLarge) {
		t.Errorf("over size: error = %v, want ErrImportTooLarge", err)
	}
}

// ============================================================================
// Limiter
// ============================================================================

func TestImportLimiter(t *testing.T) {
	l := NewImportLimiter(2, 20*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() #%d error = %v", i, err)
		}
	}
	if l.Active() != 2 || l.Available() != 0 {
		t.Errorf("Active = %d, Available = %d, want 2 and 0", l.Active(), l.Available())
	}

	if err := l.Acquire(ctx); !errors.Is(err, ErrTooManyImports) {
		t.Errorf("Acquire() on full limiter error = %v, want ErrTooManyImports", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := l.Acquire(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() with cancelled ctx error = %v, want context.Canceled", err)
	}

	l.Release()
	if err := l.Acquire(ctx); err != nil {
		t.Errorf("Acquire() after Release error = %v", err)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	l := NewImportLimiter(1, time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.WaitForDrain(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain() while busy error = %v, want DeadlineExceeded", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.Release()
	}()
	if err := l.WaitForDrain(context.Background()); err != nil {
		t.Errorf("WaitForDrain() error = %v", err)
	}
}

func TestImportLimiter_Defaults(t *testing.T) {
	l := NewImportLimiter(0, 0)
	if l.Available() != DefaultMaxConcurrentImports {
		t.Errorf("Available = %d, want %d", l.Available(), DefaultMaxConcurrentImports)
	}
}
