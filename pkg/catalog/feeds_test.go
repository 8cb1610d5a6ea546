package catalog

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"23.05.3", "https://downloads.openwrt.org/releases/23.05.3"},
		{"SNAPSHOT", "https://downloads.openwrt.org/snapshots"},
		{"24.10-SNAPSHOT", "https://downloads.openwrt.org/snapshots"},
		{"", "https://downloads.openwrt.org/snapshots"},
	}
	for _, tt := range tests {
		if got := BaseURL("https://downloads.openwrt.org/", tt.version); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestArchFeeds(t *testing.T) {
	feeds := ArchFeeds("https://downloads.openwrt.org", "23.05.3", "mips_24kc", false)
	if len(feeds) != 4 {
		t.Fatalf("expected 4 arch feeds, got %d", len(feeds))
	}

	wantSources := []string{"base", "luci", "packages", "telephony"}
	for i, feed := range feeds {
		if feed.Source != wantSources[i] {
			t.Errorf("feed %d source = %q, want %q", i, feed.Source, wantSources[i])
		}
	}
	want := "https://downloads.openwrt.org/releases/23.05.3/packages/mips_24kc/base/Packages"
	if feeds[0].URL != want {
		t.Errorf("feed URL = %q, want %q", feeds[0].URL, want)
	}

	apkFeeds := ArchFeeds("https://downloads.openwrt.org", "SNAPSHOT", "mips_24kc", true)
	want = "https://downloads.openwrt.org/snapshots/packages/mips_24kc/base/packages.adb"
	if apkFeeds[0].URL != want {
		t.Errorf("apk feed URL = %q, want %q", apkFeeds[0].URL, want)
	}
}

func TestTargetFeeds(t *testing.T) {
	feeds := TargetFeeds("https://downloads.openwrt.org", "23.05.3", "ath79/generic", nil, false)
	if len(feeds) != 1 {
		t.Fatalf("expected only the target feed without kernel info, got %d", len(feeds))
	}
	want := "https://downloads.openwrt.org/releases/23.05.3/targets/ath79/generic/packages/Packages"
	if feeds[0].URL != want {
		t.Errorf("target feed URL = %q, want %q", feeds[0].URL, want)
	}

	kernel := &models.KernelInfo{Version: "5.15.134", Release: "1", Vermagic: "abcdef"}
	feeds = TargetFeeds("https://downloads.openwrt.org", "23.05.3", "ath79/generic", kernel, false)
	if len(feeds) != 2 {
		t.Fatalf("expected target + kmods feeds, got %d", len(feeds))
	}
	want = "https://downloads.openwrt.org/releases/23.05.3/targets/ath79/generic/kmods/5.15.134-1-abcdef/Packages"
	if feeds[1].URL != want {
		t.Errorf("kmods feed URL = %q, want %q", feeds[1].URL, want)
	}
	if feeds[1].Source != "kmods" {
		t.Errorf("kmods feed source = %q", feeds[1].Source)
	}
}

func TestCustomFeeds(t *testing.T) {
	repos := []models.Repository{
		{Name: "mine", URL: "https://example.org/repo/"},
		{Name: "empty", URL: ""},
	}
	feeds := CustomFeeds(repos, false)
	if len(feeds) != 1 {
		t.Fatalf("expected repositories without a URL to be skipped, got %d feeds", len(feeds))
	}
	if feeds[0].URL != "https://example.org/repo/Packages" || feeds[0].Source != "mine" {
		t.Errorf("unexpected custom feed: %+v", feeds[0])
	}
}

func TestFetcherDecompressesGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("Package: foo\n"))
	gw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := NewFetcher(nil, nil)
	body, err := f.Fetch(context.Background(), srv.URL+"/Packages.gz")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != "Package: foo\n" {
		t.Errorf("unexpected payload: %q", body)
	}
}

func TestFetcherReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewFetcher(nil, nil)
	if _, err := f.Fetch(context.Background(), srv.URL+"/Packages"); err == nil {
		t.Errorf("expected an error for HTTP 404")
	}
}

func TestFetchProfiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/releases/23.05.3/targets/ath79/generic/profiles.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"target": "ath79/generic",
			"arch_packages": "mips_24kc",
			"default_packages": ["base-files", "busybox"],
			"linux_kernel": {"version": "5.15.134", "release": "1", "vermagic": "abcdef"},
			"profiles": {"tplink_archer-c7-v2": {"device_packages": ["kmod-usb2"]}}
		}`))
	}))
	defer srv.Close()

	f := NewFetcher(nil, nil)
	idx, err := f.FetchProfiles(context.Background(), srv.URL, "23.05.3", "ath79/generic")
	if err != nil {
		t.Fatalf("FetchProfiles failed: %v", err)
	}
	if idx.ArchPackages != "mips_24kc" || idx.LinuxKernel == nil {
		t.Errorf("unexpected index: %+v", idx)
	}

	p, ok := idx.Profiles["tplink_archer-c7-v2"]
	if !ok || p.ID != "tplink_archer-c7-v2" || p.Target != "ath79/generic" {
		t.Errorf("profile id/target not filled in: %+v", p)
	}

	defaults := idx.DefaultsFor("tplink_archer-c7-v2")
	want := []string{"base-files", "busybox", "kmod-usb2"}
	if len(defaults) != len(want) {
		t.Errorf("unexpected defaults: %v", defaults)
	}
}
