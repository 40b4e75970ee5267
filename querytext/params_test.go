package querytext

import "testing"

func TestFormatParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{
			name:   "empty",
			params: nil,
			want:   "",
		},
		{
			name:   "string and number",
			params: map[string]any{"name": "alice", "age": float64(30)},
			want:   "age=30, name='alice'",
		},
		{
			name:   "bool and null",
			params: map[string]any{"active": true, "deleted_at": nil},
			want:   "active=true, deleted_at=null",
		},
		{
			name:   "quote escaping",
			params: map[string]any{"note": "it's fine"},
			want:   "note='it''s fine'",
		},
		{
			name:   "list",
			params: map[string]any{"ids": []any{float64(1), float64(2)}},
			want:   "ids=[1, 2]",
		},
		{
			name:   "nested object",
			params: map[string]any{"filter": map[string]any{"status": "open"}},
			want:   "filter={status='open'}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FormatParams(tt.params)
			if got != tt.want {
				t.Errorf("FormatParams(%v) = %q, want %q", tt.params, got, tt.want)
			}
		})
	}
}
