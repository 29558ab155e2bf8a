package main

import "testing"

func TestAnnouncement(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr bool
	}{
		{
			name: "feedback",
			req:  Request{Event: "feedback", Message: "Your tree form needs minor adjustments."},
			want: "Your tree form needs minor adjustments.",
		},
		{
			name: "pose saved",
			req:  Request{Event: "pose_saved", Pose: "warrior2", Samples: 3},
			want: "Saved warrior2 from 3 samples.",
		},
		{
			name:    "feedback without message",
			req:     Request{Event: "feedback"},
			wantErr: true,
		},
		{
			name:    "unknown event",
			req:     Request{Event: "capture"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := announcement(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("announcement() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("announcement() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpeak_CustomCommand(t *testing.T) {
	if err := speak("true", "hello"); err != nil {
		t.Errorf("speak() error = %v", err)
	}
	if err := speak("false", "hello"); err == nil {
		t.Error("expected an error from a failing command")
	}
}
