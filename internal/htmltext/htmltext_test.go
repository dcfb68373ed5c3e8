package htmltext

import "testing"

func TestSummarize(t *testing.T) {
	fragment := `<h2>Protect the   lane</h2>
<p>The city plans to remove the protected lane on Spruce Street.</p>
<script>alert(1)</script>
<ul><li>Write to council</li><li><p>Show up</p></li></ul>
<img src="/media/lane.jpg" alt="Spruce lane"><img alt="no src">`

	sum, err := Summarize(fragment, 0)
	if err != nil {
		t.Fatal(err)
	}

	want := "Protect the lane\n\nThe city plans to remove the protected lane on Spruce Street.\n\nWrite to council\n\nShow up"
	if sum.Text != want {
		t.Errorf("Text = %q, want %q", sum.Text, want)
	}
	if len(sum.Images) != 1 {
		t.Fatalf("expected 1 image, got %d", len(sum.Images))
	}
	if img := sum.FirstImage(); img.Src != "/media/lane.jpg" || img.Alt != "Spruce lane" {
		t.Errorf("FirstImage() = %+v", img)
	}
}

func TestSummarizePlainText(t *testing.T) {
	sum, err := Summarize("just   some\ntext", 0)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Text != "just some text" {
		t.Errorf("Text = %q", sum.Text)
	}
	if sum.FirstImage() != nil {
		t.Error("expected no image")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"one two three four", 9, "one two…"},
		{"unbrokenword", 4, "unbr…"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
