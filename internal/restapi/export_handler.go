package restapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"ridership.subwaydash.org/internal/tabular"
)

// exportHandler streams one derived table as CSV. The table name may carry
// a ".csv" suffix.
func (api *RestAPI) exportHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(r.PathValue("table"), ".csv")
	res, _, ok := api.result(w, r)
	if !ok {
		return
	}
	if err := res.OutputErr(name); err != nil {
		api.runErrorResponse(w, r, err)
		return
	}

	for _, nt := range res.Tables() {
		if nt.Name != name {
			continue
		}
		var buf bytes.Buffer
		if err := tabular.WriteCSV(&buf, nt.Table); err != nil {
			api.serverErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, name))
		if _, err := w.Write(buf.Bytes()); err != nil {
			api.logger(r).Warn("failed to write csv export", "error", err)
		}
		return
	}
	api.sendNotFound(w, r)
}
