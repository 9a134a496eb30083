package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithMember(t *testing.T) {
	tests := []struct {
		name    string
		member  string
		guild   string
		channel string
		expect  map[string]string
	}{
		{
			name:    "all fields",
			member:  "ajay99",
			guild:   "g1",
			channel: "c-community",
			expect:  map[string]string{FieldMember: "ajay99", FieldGuild: "g1", FieldChannel: "c-community"},
		},
		{
			name:   "join has no channel",
			member: "ajay99",
			guild:  "g1",
			expect: map[string]string{FieldMember: "ajay99", FieldGuild: "g1"},
		},
		{
			name:    "values are trimmed",
			member:  "  Meena K ",
			guild:   " g2",
			channel: "   ",
			expect:  map[string]string{FieldMember: "Meena K", FieldGuild: "g2"},
		},
		{
			name:   "nothing known",
			expect: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.InfoLevel)

			WithMember(zap.New(core), tt.member, tt.guild, tt.channel).Info("member joined")

			ctx := observed.All()[0].ContextMap()
			if len(ctx) != len(tt.expect) {
				t.Fatalf("expected fields %v, got %v", tt.expect, ctx)
			}
			for key, want := range tt.expect {
				if ctx[key] != want {
					t.Fatalf("expected %s=%q, got %v", key, want, ctx[key])
				}
			}
		})
	}
}

func TestWithMemberNilLogger(t *testing.T) {
	if WithMember(nil, "ajay99", "g1", "c1") == nil {
		t.Fatalf("expected a no-op logger when nil provided")
	}
}

func TestWithMemberKeepsParentFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	parent := WithCommonFields(zap.New(core), "ollama", "llava:7b")

	WithMember(parent, "ravi", "g1", "c-volunteers").Info("relayed reply")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "ollama" || ctx[FieldModel] != "llava:7b" {
		t.Fatalf("expected provider fields to survive, got %v", ctx)
	}
	if ctx[FieldMember] != "ravi" || ctx[FieldChannel] != "c-volunteers" {
		t.Fatalf("expected member fields, got %v", ctx)
	}
}
