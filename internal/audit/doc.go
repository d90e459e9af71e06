// Package audit runs rules against virtual nodes.
//
// The Auditor is the single entry point of the virtual rule pipeline:
//
//	lookup -> disable hidden exclusion -> build context -> invoke -> publish -> return
//
// A rule identifier that is not registered is a normal outcome, reported by a
// false found flag rather than an error. Errors from a rule's evaluator are
// returned exactly as the evaluator produced them. Errors from the metadata
// publisher are wrapped in ErrPublish and returned together with the rule's
// result.
//
// # Usage
//
//	auditor := audit.New(registry,
//	    audit.WithPublisher(metadata.NewCatalogPublisher(catalog)),
//	)
//	result, found, err := auditor.RunVirtualRule(ctx, "image-alt", node, nil)
//	if err != nil {
//	    return err
//	}
//	if !found {
//	    // no such rule
//	}
package audit
