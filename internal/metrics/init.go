package metrics

// Registration outcome label values.
var RegistrationOutcomes = []string{
	"inserted", "already_exists", "category_upgraded", "merged_into_existing", "error",
}

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range RegistrationOutcomes {
		TagRegistrationsTotal.WithLabelValues(outcome)
	}

	for _, status := range []string{"success", "error"} {
		TagMergesTotal.WithLabelValues(status)
	}

	for _, action := range []string{"relinked", "dropped"} {
		TagMergeLinksTotal.WithLabelValues(action)
	}

	for _, kind := range []string{"tags", "aliases", "links", "content"} {
		TagGraphTotal.WithLabelValues(kind)
	}

	for _, result := range []string{"registered", "existing", "failed"} {
		ImportDocumentsTotal.WithLabelValues(result)
	}

	for _, ordering := range []string{"date_desc", "date_asc", "none", "random"} {
		QueryRowsReturned.WithLabelValues(ordering)
	}

	for _, op := range []string{"initialize_schema", "check_tag_exists", "register_tag",
		"merge_tags", "resolve_reference", "query_content", "count_content", "set_parent"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, t := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(t)
	}
}
