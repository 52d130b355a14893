package models

type GitProperties struct {
	GitBranch         string `json:"git.branch"`
	GitBuildTime      string `json:"git.build.time"`
	GitBuildVersion   string `json:"git.build.version"`
	GitCommitId       string `json:"git.commit.id"`
	GitCommitIdAbbrev string `json:"git.commit.id.abbrev"`
	GitDirty          string `json:"git.dirty"`
}

// ConfigModel describes the running service and the dataset it answers from.
type ConfigModel struct {
	GitProperties   GitProperties `json:"gitProperties"`
	Id              string        `json:"id"`
	Name            string        `json:"name"`
	Environment     string        `json:"environment"`
	Sources         []string      `json:"sources"`
	FilterScope     []string      `json:"filterScope"`
	Dataset         DatasetModel  `json:"dataset"`
	ServiceDateFrom string        `json:"serviceDateFrom"`
	ServiceDateTo   string        `json:"serviceDateTo"`
}

// DatasetModel summarizes the installed dataset.
type DatasetModel struct {
	Source   string         `json:"source"`
	LoadedAt int64          `json:"loadedAt"`
	Rows     int            `json:"rows"`
	Input    int            `json:"input"`
	Dropped  map[string]int `json:"dropped"`
	Columns  []string       `json:"columns"`
}

// DefaultDatesModel is the window a date picker should start with.
type DefaultDatesModel struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Empty     bool   `json:"empty"`
}
