package gdrive

import (
	"bytes"
	"net/url"
	"testing"
	"time"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "abc-Qt12kjmS21kjDm2kjd", want: "abc-Qt12kjmS21kjDm2kjd"},
		{input: "  abc_123  ", want: "abc_123"},
		{input: "https://drive.google.com/file/d/abc_123-X/view?usp=sharing", want: "abc_123-X"},
		{input: "https://drive.google.com/file/d/abc123/", want: "abc123"},
		{input: "https://drive.google.com/open?id=xyz789", want: "xyz789"},
		{input: "https://drive.google.com/uc?export=download&id=qwe456", want: "qwe456"},
		{input: "https://example.com/nothing/here", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractVideoID(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ExtractVideoID(%q) = %q, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractVideoID(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVideoInfoURL(t *testing.T) {
	want := "https://drive.google.com/u/0/get_video_info?docid=abc123&drive_originator_app=303"
	if got := VideoInfoURL("abc123"); got != want {
		t.Errorf("VideoInfoURL = %q, want %q", got, want)
	}
}

func TestParseVideoInfo(t *testing.T) {
	stream := url.QueryEscape("18|https://r1.example.com/videoplayback?id=1&itag=18")
	other := url.QueryEscape("22|https://r2.example.com/videoplayback?id=2")
	tests := []struct {
		name      string
		body      string
		wantTitle string
		wantURL   string
	}{
		{
			name:      "title and stream",
			body:      "status=ok&title=My%20Holiday%20Video&fmt_stream_map=" + stream,
			wantTitle: "My Holiday Video",
			wantURL:   "https://r1.example.com/videoplayback?id=1&itag=18",
		},
		{
			name:      "first matches win",
			body:      "title=First&fmt_stream_map=" + stream + "&title=Second&url_encoded=" + other,
			wantTitle: "First",
			wantURL:   "https://r1.example.com/videoplayback?id=1&itag=18",
		},
		{
			name:      "title keeps last equals segment",
			body:      "title=a%3Db&x=1",
			wantTitle: "a=b",
		},
		{
			name:    "plus is not a space",
			body:    "title=a+b&fmt_stream_map=" + stream,
			wantURL: "https://r1.example.com/videoplayback?id=1&itag=18",
			// title decoding leaves '+' alone
			wantTitle: "a+b",
		},
		{
			name: "nothing useful",
			body: "status=fail&reason=denied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseVideoInfo(tt.body)
			if info.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", info.Title, tt.wantTitle)
			}
			if info.VideoURL != tt.wantURL {
				t.Errorf("VideoURL = %q, want %q", info.VideoURL, tt.wantURL)
			}
		})
	}
}

func TestResolveFilename(t *testing.T) {
	tests := []struct {
		output, title, id string
		want              string
	}{
		{output: "clip.mkv", title: "ignored", id: "x", want: "clip.mkv"},
		{output: " out/clip ", id: "x", want: "out/clip.mp4"},
		{title: "Lecture 1", id: "x", want: "Lecture 1.mp4"},
		{title: "Talk.webm", id: "x", want: "Talk.webm"},
		{title: "a/b: c", id: "x", want: "a_b_ c.mp4"},
		{title: "   ", id: "abc", want: "video_abc.mp4"},
		{id: "abc", want: "video_abc.mp4"},
	}
	for _, tt := range tests {
		if got := ResolveFilename(tt.output, tt.title, tt.id); got != tt.want {
			t.Errorf("ResolveFilename(%q, %q, %q) = %q, want %q", tt.output, tt.title, tt.id, got, tt.want)
		}
	}
}

var testModTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
