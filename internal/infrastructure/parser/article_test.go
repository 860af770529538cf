package parser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"PressRadar/internal/config"
)

func extractConfig() config.ExtractConfig {
	return config.ExtractConfig{
		ContentClassPatterns: []string{`story__body`, `content`, `prose`},
		MinFragmentChars:     6,
		BoilerplatePhrases:   []string{"niet voor publicatie", "perscontact"},
	}
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(extractConfig())
	if err != nil {
		t.Fatalf("NewExtractor error: %v", err)
	}
	return e
}

func TestExtractArticleElement(t *testing.T) {
	t.Parallel()

	markup := `
	<html><body>
	  <article>
	    <h1>De Mol keert terug</h1>
	    <p>Vanaf 2 maart strijden tien kandidaten opnieuw om de pot.</p>
	    <p>De opnames vonden plaats in Vietnam.</p>
	  </article>
	</body></html>`

	runDate := time.Date(2026, time.February, 20, 9, 0, 0, 0, time.UTC)
	article, err := newTestExtractor(t).Extract([]byte(markup), runDate)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if article.Title != "De Mol keert terug" {
		t.Fatalf("unexpected title: %q", article.Title)
	}
	if !strings.Contains(article.Body, "Vanaf 2 maart") {
		t.Fatalf("body missing intro: %q", article.Body)
	}
	if !strings.Contains(article.Body, "\n\n") {
		t.Fatalf("paragraph separator lost: %q", article.Body)
	}
	if article.PublicationDate != "2026-02-20" {
		t.Fatalf("expected run-date fallback, got %s", article.PublicationDate)
	}
}

func TestExtractPublicationDateFromTimeMarker(t *testing.T) {
	t.Parallel()

	markup := `
	<html><body>
	  <time datetime="2026-02-18T10:30:00+01:00">18 februari</time>
	  <article>
	    <h1>Blind Getrouwd</h1>
	    <p>De nieuwe reeks start binnenkort op VTM.</p>
	  </article>
	</body></html>`

	article, err := newTestExtractor(t).Extract([]byte(markup), time.Now())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if article.PublicationDate != "2026-02-18" {
		t.Fatalf("unexpected publication date: %s", article.PublicationDate)
	}
}

func TestExtractReadsTimeMarkerInsideStrippedHeader(t *testing.T) {
	t.Parallel()

	// No article element and no content-class div, so the container falls
	// back to the page body and the noise strip removes the header. The
	// time marker inside it must still win over the run-date fallback.
	markup := `
	<html><body>
	  <header>
	    <time datetime="2026-02-18T08:00:00+01:00">18 februari</time>
	  </header>
	  <h1>Persbericht zonder container</h1>
	  <p>De volledige tekst staat rechtstreeks in de pagina.</p>
	</body></html>`

	runDate := time.Date(2026, time.February, 20, 9, 0, 0, 0, time.UTC)
	article, err := newTestExtractor(t).Extract([]byte(markup), runDate)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if article.PublicationDate != "2026-02-18" {
		t.Fatalf("expected date from stripped header, got %s", article.PublicationDate)
	}
}

func TestExtractStripsNoiseAndBoilerplate(t *testing.T) {
	t.Parallel()

	markup := `
	<html><body>
	  <article>
	    <h1>Nieuwe quiz aangekondigd</h1>
	    <p>De quiz wordt gepresenteerd door een bekend gezicht.</p>
	    <nav><p>Home Programma's Contact Archief</p></nav>
	    <script>console.log("tracker");</script>
	    <p>Niet voor publicatie: perscontact via 02/123.45.67.</p>
	    <p>ok</p>
	  </article>
	</body></html>`

	article, err := newTestExtractor(t).Extract([]byte(markup), time.Now())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if strings.Contains(article.Body, "tracker") {
		t.Fatalf("script text leaked into body: %q", article.Body)
	}
	if strings.Contains(article.Body, "Archief") {
		t.Fatalf("nav text leaked into body: %q", article.Body)
	}
	if strings.Contains(article.Body, "publicatie") {
		t.Fatalf("boilerplate leaked into body: %q", article.Body)
	}
	if strings.Contains(article.Body, "ok") {
		t.Fatalf("short fragment survived noise filter: %q", article.Body)
	}
	if !strings.Contains(article.Body, "bekend gezicht") {
		t.Fatalf("real paragraph missing: %q", article.Body)
	}
}

func TestExtractFallsBackToClassPattern(t *testing.T) {
	t.Parallel()

	markup := `
	<html><body>
	  <h1>Kandidaten bekendgemaakt</h1>
	  <div class="story__body story__body--wide">
	    <p>Dit zijn de tien kandidaten van het nieuwe seizoen.</p>
	  </div>
	  <div class="sidebar">
	    <p>Gerelateerde artikels over andere programma's hier.</p>
	  </div>
	</body></html>`

	article, err := newTestExtractor(t).Extract([]byte(markup), time.Now())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if !strings.Contains(article.Body, "tien kandidaten") {
		t.Fatalf("story body missing: %q", article.Body)
	}
	if strings.Contains(article.Body, "Gerelateerde") {
		t.Fatalf("sidebar leaked into body: %q", article.Body)
	}
}

func TestExtractFallsBackToPageBody(t *testing.T) {
	t.Parallel()

	markup := `
	<html><body>
	  <h1>Persbericht zonder container</h1>
	  <p>De volledige tekst staat rechtstreeks in de pagina.</p>
	</body></html>`

	article, err := newTestExtractor(t).Extract([]byte(markup), time.Now())
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if !strings.Contains(article.Body, "rechtstreeks in de pagina") {
		t.Fatalf("body fallback missing text: %q", article.Body)
	}
}

func TestExtractRejectsMissingTitle(t *testing.T) {
	t.Parallel()

	markup := `
	<html><body>
	  <article>
	    <p>Een artikel zonder kop is geen bruikbaar persbericht.</p>
	  </article>
	</body></html>`

	_, err := newTestExtractor(t).Extract([]byte(markup), time.Now())
	if !errors.Is(err, ErrNoTitle) {
		t.Fatalf("expected ErrNoTitle, got %v", err)
	}
}
