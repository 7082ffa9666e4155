package seed

import (
	"testing"
)

func TestBuildDSN(t *testing.T) {
	cfg := Config{
		Host:     "db.local",
		Port:     5432,
		User:     "tester",
		Password: "secret",
		Name:     "apidb",
	}

	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{
			driver: "postgres",
			want:   "host=db.local port=5432 user=tester password=secret dbname=apidb sslmode=disable",
		},
		{
			driver: "mysql",
			want:   "tester:secret@tcp(db.local:5432)/apidb",
		},
		{
			driver: "sqlserver",
			want:   "server=db.local;port=5432;user id=tester;password=secret;database=apidb",
		},
		{
			driver:  "oracle",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg.Driver = tt.driver
			got, err := buildDSN(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildDSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("buildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{driver: "postgres", want: "$1"},
		{driver: "mysql", want: "?"},
		{driver: "sqlserver", want: "@p1"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s := &Store{driver: tt.driver}
			if got := s.placeholder(1); got != tt.want {
				t.Errorf("placeholder(1) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFoldName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "project_id", want: "projectid"},
		{in: "ProjectId", want: "projectid"},
		{in: "DBTypeId", want: "dbtypeid"},
		{in: "name", want: "name"},
	}

	for _, tt := range tests {
		if got := foldName(tt.in); got != tt.want {
			t.Errorf("foldName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDBValue(t *testing.T) {
	if got := normalizeDBValue([]byte("hello")); got != "hello" {
		t.Errorf("normalizeDBValue([]byte) = %v, want %q", got, "hello")
	}
	if got := normalizeDBValue(int64(7)); got != int64(7) {
		t.Errorf("normalizeDBValue(int64) = %v, want 7", got)
	}
}
