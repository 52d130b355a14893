package restapi

import (
	"net/http"
	"time"

	"ridership.subwaydash.org/internal/buildinfo"
	"ridership.subwaydash.org/internal/models"
)

func (api *RestAPI) configHandler(w http.ResponseWriter, r *http.Request) {
	gitProps := models.GitProperties{
		GitBranch:         buildinfo.Branch,
		GitBuildTime:      buildinfo.BuildTime,
		GitBuildVersion:   buildinfo.Version,
		GitCommitId:       buildinfo.CommitHash,
		GitCommitIdAbbrev: buildinfo.ShortHash(),
		GitDirty:          buildinfo.Dirty,
	}

	ds := api.Data.Dataset()
	report := ds.Report()
	configEntry := models.ConfigModel{
		GitProperties: gitProps,
		Id:            "subway-ridership",
		Name:          "NYC Subway Ridership Dashboard",
		Environment:   api.Config.Env.String(),
		Sources:       api.Data.Sources(),
		FilterScope:   api.Runner.Scope().Names(),
		Dataset: models.DatasetModel{
			Source:   ds.Source(),
			LoadedAt: ds.LoadedAt().UnixMilli(),
			Rows:     ds.Len(),
			Input:    report.Input,
			Dropped:  report.Dropped,
			Columns:  ds.Records().Columns.Names(),
		},
	}
	if configEntry.FilterScope == nil {
		configEntry.FilterScope = []string{}
	}
	if configEntry.Dataset.Dropped == nil {
		configEntry.Dataset.Dropped = map[string]int{}
	}
	if from, ok := ds.Earliest(); ok {
		configEntry.ServiceDateFrom = from.Format(time.DateOnly)
	}
	if to, ok := ds.Latest(); ok {
		configEntry.ServiceDateTo = to.Format(time.DateOnly)
	}

	api.sendResponse(w, r, models.NewEntryResponse(configEntry, api.clock()))
}
