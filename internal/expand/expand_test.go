// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package expand

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  UUID
		ok    bool
	}{
		{
			name:  "simple start",
			input: "web_start_0",
			want:  UUID{ResourceID: "web", Task: "start", IntervalMS: 0},
			ok:    true,
		},
		{
			name:  "monitor with interval",
			input: "web_monitor_10000",
			want:  UUID{ResourceID: "web", Task: "monitor", IntervalMS: 10000},
			ok:    true,
		},
		{
			name:  "multi-segment resource id",
			input: "my_complex_resource_stop_0",
			want:  UUID{ResourceID: "my_complex_resource", Task: "stop", IntervalMS: 0},
			ok:    true,
		},
		{
			name:  "notify confirmed-post form",
			input: "web_confirmed-post_notify_0",
			want:  UUID{ResourceID: "web", Task: "notify", IntervalMS: 0, Notify: "confirmed-post"},
			ok:    true,
		},
		{
			name:  "not enough segments",
			input: "web_start",
			ok:    false,
		},
		{
			name:  "non-numeric interval",
			input: "web_start_abc",
			ok:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Parse(tc.input)
			if ok != tc.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if !tc.ok {
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.input, diff)
			}
		})
	}
}

func TestTask2Conversions(t *testing.T) {
	cases := []struct {
		task       string
		wantTask   string
		wantExpand bool
	}{
		{"start", "running", true},
		{"stop", "stopped", true},
		{"notify", "notified", true},
		{"promote", "promoted", true},
		{"demote", "demoted", true},
		{"running", "running", true},
		{"monitor", "monitor", false},
		{"shutdown", "shutdown", false},
		{"fence", "fence", false},
	}

	for _, tc := range cases {
		t.Run(tc.task, func(t *testing.T) {
			u := UUID{Task: tc.task}
			got, expands := u.Task2()
			if got != tc.wantTask || expands != tc.wantExpand {
				t.Errorf("Task2() = (%q, %v), want (%q, %v)", got, expands, tc.wantTask, tc.wantExpand)
			}
		})
	}
}
