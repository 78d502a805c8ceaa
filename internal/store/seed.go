package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/minifeed/internal/model"
)

// Seed is the YAML fixture a reference server starts from.
//
//	groups:
//	  - name: news
//	    feeds:
//	      - id: bbc
//	        title: BBC News
//	        items:
//	          - title: Something happened
//	            published: 2024-05-01T10:00:00Z
//	          - title: Breaking
//	            drip: true
type Seed struct {
	Groups []SeedGroup `yaml:"groups"`
}

// SeedGroup is one group and its feeds.
type SeedGroup struct {
	Name  string     `yaml:"name"`
	Feeds []SeedFeed `yaml:"feeds"`
}

// SeedFeed is one feed and its items.
type SeedFeed struct {
	ID    string     `yaml:"id"`
	Title string     `yaml:"title"`
	URL   string     `yaml:"url"`
	Items []SeedItem `yaml:"items"`
}

// SeedItem is one item. Drip items are held back and released one at a
// time while the server runs.
type SeedItem struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Link        string    `yaml:"link"`
	Description string    `yaml:"description"`
	Published   time.Time `yaml:"published"`
	Drip        bool      `yaml:"drip"`
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed decodes and validates a seed document. Unknown keys are errors.
func LoadSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Seed
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) normalize() error {
	groups := make(map[string]bool)
	feeds := make(map[string]bool)
	items := make(map[string]bool)

	for gi := range s.Groups {
		g := &s.Groups[gi]
		if g.Name == "" {
			return fmt.Errorf("seed: group %d has no name", gi)
		}
		if groups[g.Name] {
			return fmt.Errorf("seed: duplicate group %q", g.Name)
		}
		groups[g.Name] = true

		for fi := range g.Feeds {
			f := &g.Feeds[fi]
			if f.ID == "" {
				return fmt.Errorf("seed: feed %d in group %q has no id", fi, g.Name)
			}
			if feeds[f.ID] {
				return fmt.Errorf("seed: duplicate feed %q", f.ID)
			}
			feeds[f.ID] = true
			if f.Title == "" {
				f.Title = f.ID
			}

			for ii := range f.Items {
				it := &f.Items[ii]
				if it.ID == "" {
					it.ID = fmt.Sprintf("%s-%d", f.ID, ii+1)
				}
				if items[it.ID] {
					return fmt.Errorf("seed: duplicate item %q", it.ID)
				}
				items[it.ID] = true
				if it.Description == "" {
					it.Description = it.Title
				}
			}
		}
	}
	return nil
}

// GroupNames returns the groups in file order.
func (s *Seed) GroupNames() []string {
	out := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		out[i] = g.Name
	}
	return out
}

// Feeds returns every feed with its group set.
func (s *Seed) Feeds() []model.Feed {
	var out []model.Feed
	for _, g := range s.Groups {
		for _, f := range g.Feeds {
			out = append(out, model.Feed{ID: f.ID, Title: f.Title, Group: g.Name, URL: f.URL})
		}
	}
	return out
}

// Populate loads the seed into st. Non-drip items are stored with
// added = now; drip items are returned in file order for the caller to
// release later. Stored items without a published time get now; drip
// items keep zero so the release time can fill it in.
func (s *Seed) Populate(ctx context.Context, st *Store, now time.Time) ([]model.Item, error) {
	if err := st.SaveGroups(ctx, s.GroupNames()); err != nil {
		return nil, fmt.Errorf("save groups: %w", err)
	}
	if err := st.SaveFeeds(ctx, s.Feeds()); err != nil {
		return nil, fmt.Errorf("save feeds: %w", err)
	}

	var ready, held []model.Item
	for _, g := range s.Groups {
		for _, f := range g.Feeds {
			for _, si := range f.Items {
				it := model.Item{
					ID:          si.ID,
					Feed:        f.ID,
					Title:       si.Title,
					Link:        si.Link,
					Description: si.Description,
					Added:       now.Unix(),
				}
				if !si.Published.IsZero() {
					it.Published = si.Published.Unix()
				}
				if si.Drip {
					held = append(held, it)
					continue
				}
				if it.Published == 0 {
					it.Published = now.Unix()
				}
				ready = append(ready, it)
			}
		}
	}

	if _, err := st.SaveItems(ctx, ready); err != nil {
		return nil, fmt.Errorf("save items: %w", err)
	}
	return held, nil
}
