package engine

// Source is one CSV dataset in the catalog.
type Source struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"-"`
}

// Topic groups subtopic datasets. A topic with no subtopics is listed but
// cannot be loaded.
type Topic struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Subtopics []Source `yaml:"subtopics" json:"subtopics"`
}

// Catalog maps topics, correlation indicators and the population table to
// their files.
type Catalog struct {
	Topics     []Topic
	Indicators []Source
	Population string
}

func (c Catalog) Topic(id string) (Topic, bool) {
	for _, t := range c.Topics {
		if t.ID == id {
			return t, true
		}
	}
	return Topic{}, false
}

func (c Catalog) Indicator(id string) (Source, bool) {
	for _, s := range c.Indicators {
		if s.ID == id {
			return s, true
		}
	}
	return Source{}, false
}

// Paths lists every file the catalog refers to.
func (c Catalog) Paths() []string {
	var out []string
	for _, t := range c.Topics {
		for _, s := range t.Subtopics {
			out = append(out, s.Path)
		}
	}
	for _, s := range c.Indicators {
		out = append(out, s.Path)
	}
	if c.Population != "" {
		out = append(out, c.Population)
	}
	return out
}
