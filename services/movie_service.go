// services/movie_service.go
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	tmdbBaseURL       = "https://api.themoviedb.org/3"
	netflixProviderID = 8
	defaultRegion     = "MX"
)

// Movie is the catalog shape served to clients
type Movie struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Overview    string  `json:"overview" yaml:"overview"`
	PosterPath  string  `json:"poster_path,omitempty" yaml:"poster_path"`
	ReleaseDate string  `json:"release_date" yaml:"release_date"`
	VoteAverage float64 `json:"vote_average" yaml:"vote_average"`
}

// MovieService proxies the TMDB catalog, falling back to a bundled example
// catalog when no API key is configured or the remote call fails. The
// catalog is read-only and outside the redemption core.
type MovieService struct {
	BaseURL  string
	APIKey   string
	Region   string
	Client   *http.Client
	fallback []Movie
}

func NewMovieService() *MovieService {
	region := os.Getenv("TMDB_REGION")
	if region == "" {
		region = defaultRegion
	}
	s := &MovieService{
		BaseURL: tmdbBaseURL,
		APIKey:  os.Getenv("TMDB_API_KEY"),
		Region:  region,
		Client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}

	path := os.Getenv("CATALOG_FALLBACK_PATH")
	if path == "" {
		path = "catalog.yaml"
	}
	fallback, err := loadFallbackCatalog(path)
	if err != nil {
		log.Printf("⚠️  [MOVIES] No fallback catalog loaded (%v)", err)
	}
	s.fallback = fallback
	return s
}

// loadFallbackCatalog reads the bundled example catalog.
func loadFallbackCatalog(path string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var doc struct {
		Movies []Movie `yaml:"movies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return doc.Movies, nil
}

type tmdbDiscoverResponse struct {
	Results []struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		Overview    string  `json:"overview"`
		PosterPath  string  `json:"poster_path"`
		ReleaseDate string  `json:"release_date"`
		VoteAverage float64 `json:"vote_average"`
	} `json:"results"`
}

// GetNetflixMovies lists movies currently streamable on Netflix in the
// configured region. Remote failures degrade to the example catalog so the
// earning flow keeps working offline.
func (s *MovieService) GetNetflixMovies(page int) ([]Movie, error) {
	if s.APIKey == "" {
		return s.fallback, nil
	}
	if page < 1 {
		page = 1
	}

	u, err := url.Parse(s.BaseURL + "/discover/movie")
	if err != nil {
		return s.fallback, nil
	}
	q := u.Query()
	q.Set("api_key", s.APIKey)
	q.Set("with_watch_providers", fmt.Sprintf("%d", netflixProviderID))
	q.Set("watch_region", s.Region)
	q.Set("sort_by", "popularity.desc")
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()

	resp, err := s.Client.Get(u.String())
	if err != nil {
		log.Printf("⚠️  [MOVIES] TMDB unreachable, serving fallback catalog: %v", err)
		return s.fallback, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("⚠️  [MOVIES] TMDB returned %d (%s), serving fallback catalog", resp.StatusCode, string(body))
		return s.fallback, nil
	}

	var out tmdbDiscoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return s.fallback, nil
	}

	movies := make([]Movie, 0, len(out.Results))
	for _, m := range out.Results {
		movies = append(movies, Movie{
			ID:          m.ID,
			Title:       m.Title,
			Overview:    m.Overview,
			PosterPath:  m.PosterPath,
			ReleaseDate: m.ReleaseDate,
			VoteAverage: m.VoteAverage,
		})
	}
	return movies, nil
}
