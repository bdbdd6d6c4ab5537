// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tags computes the effective tag set of an item for the edit form.
//
// An item sees the tags of every template it was inherited through, the
// tags of its host (including the host's own template tags) and its own
// tags. Resolve merges them by (tag, value) pair and annotates each entry
// with its provenance.
package tags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
)

var tracer = otel.Tracer("aleutian.console.tags")

// Input holds everything Resolve needs, already fetched.
type Input struct {
	// Chain is the template chain of the item or its discovery rule.
	// Index 0 is the sentinel self entry and never contributes tags.
	Chain []datatypes.TemplateSummary

	// TemplateTags maps template id to that template's tags. Templates in
	// Chain that are missing here are skipped.
	TemplateTags map[string][]datatypes.Tag

	// HostTags are the tags of the owning host, template tags included.
	HostTags []datatypes.Tag

	// OwnTags are the tags defined on the item itself.
	OwnTags []datatypes.Tag
}

// Resolve merges template, host and own tags into the list shown by the
// item edit form.
//
// # Description
//
// Template tags are merged in chain order; a pair seen on several templates
// collects every contributing template in ParentTemplates. Host tags then
// replace the entry for their pair with a plain inherited entry, dropping
// template attribution. Own tags mark an existing pair as both, anything
// else as own.
//
// The result is sorted by (tag, value). An empty result is replaced by one
// blank tag so the form always has an editable row.
//
// # Thread Safety
//
// Pure function. Safe for concurrent use.
func Resolve(in Input) []datatypes.MergedTag {
	merged := make(map[datatypes.TagKey]datatypes.MergedTag)

	if len(in.Chain) > 1 {
		for _, tpl := range in.Chain[1:] {
			tplTags, ok := in.TemplateTags[tpl.TemplateID]
			if !ok {
				continue
			}
			for _, t := range tplTags {
				key := t.Key()
				if entry, exists := merged[key]; exists {
					if entry.ParentTemplates == nil {
						entry.ParentTemplates = make(map[string]datatypes.TemplateSummary)
					}
					entry.ParentTemplates[tpl.TemplateID] = tpl
					merged[key] = entry
					continue
				}
				merged[key] = datatypes.MergedTag{
					Tag:             t.Tag,
					Value:           t.Value,
					Type:            datatypes.ProvenancePtr(datatypes.ProvenanceInherited),
					ParentTemplates: map[string]datatypes.TemplateSummary{tpl.TemplateID: tpl},
				}
			}
		}
	}

	for _, t := range in.HostTags {
		merged[t.Key()] = datatypes.MergedTag{
			Tag:   t.Tag,
			Value: t.Value,
			Type:  datatypes.ProvenancePtr(datatypes.ProvenanceInherited),
		}
	}

	for _, t := range in.OwnTags {
		key := t.Key()
		if entry, exists := merged[key]; exists {
			entry.Type = datatypes.ProvenancePtr(datatypes.ProvenanceBoth)
			merged[key] = entry
			continue
		}
		merged[key] = datatypes.MergedTag{
			Tag:   t.Tag,
			Value: t.Value,
			Type:  datatypes.ProvenancePtr(datatypes.ProvenanceOwn),
		}
	}

	if len(merged) == 0 {
		return []datatypes.MergedTag{{Tag: "", Value: ""}}
	}

	out := make([]datatypes.MergedTag, 0, len(merged))
	for _, entry := range merged {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return datatypes.TagKey{Tag: out[i].Tag, Value: out[i].Value}.Less(
			datatypes.TagKey{Tag: out[j].Tag, Value: out[j].Value})
	})
	return out
}

// =============================================================================
// Collaborators
// =============================================================================

// TemplateChainSource resolves the template chain of an item.
type TemplateChainSource interface {
	ParentTemplates(ctx context.Context, itemID, templateID string) ([]datatypes.TemplateSummary, error)
}

// TemplateTagSource looks up the tags of many templates at once.
type TemplateTagSource interface {
	TemplateTags(ctx context.Context, templateIDs []string) (map[string][]datatypes.Tag, error)
}

// HostTagSource looks up the tags of a host, template tags included.
type HostTagSource interface {
	HostTags(ctx context.Context, hostID string) ([]datatypes.Tag, error)
}

// Request identifies the item whose tags are resolved.
type Request struct {
	ItemID     string
	TemplateID string
	HostID     string
	OwnTags    []datatypes.Tag

	// DiscoveryRule is set for discovered items. Their chain is traced
	// through the rule instead of the item.
	DiscoveryRule *datatypes.DiscoveryRuleRef
}

// Resolver fetches the inputs of Resolve from its collaborators.
type Resolver struct {
	chains    TemplateChainSource
	templates TemplateTagSource
	hosts     HostTagSource
	logger    *slog.Logger
}

// NewResolver creates a Resolver. A nil logger uses slog.Default().
func NewResolver(chains TemplateChainSource, templates TemplateTagSource, hosts HostTagSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		chains:    chains,
		templates: templates,
		hosts:     hosts,
		logger:    logger.With("component", "tags"),
	}
}

// Resolve gathers the template chain, template tags and host tags for req
// and merges them with the item's own tags.
//
// # Outputs
//
//   - []datatypes.MergedTag: Merged, sorted tags. Never empty.
//   - error: Storage failures only. A missing host counts as no host tags.
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]datatypes.MergedTag, error) {
	ctx, span := tracer.Start(ctx, "tags.Resolver.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("item_id", req.ItemID),
		attribute.String("host_id", req.HostID),
		attribute.Bool("discovered", req.DiscoveryRule != nil),
	)

	chainItem, chainTemplate := req.ItemID, req.TemplateID
	if req.DiscoveryRule != nil {
		chainItem, chainTemplate = req.DiscoveryRule.ItemID, req.DiscoveryRule.TemplateID
	}

	chain, err := r.chains.ParentTemplates(ctx, chainItem, chainTemplate)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("resolve template chain: %w", err)
	}

	var templateTags map[string][]datatypes.Tag
	if len(chain) > 1 {
		ids := make([]string, 0, len(chain)-1)
		for _, tpl := range chain[1:] {
			ids = append(ids, tpl.TemplateID)
		}
		templateTags, err = r.templates.TemplateTags(ctx, ids)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("fetch template tags: %w", err)
		}
	}

	hostTags, err := r.hosts.HostTags(ctx, req.HostID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			span.RecordError(err)
			return nil, fmt.Errorf("fetch host tags: %w", err)
		}
		r.logger.Debug("host not found, skipping host tags", "host_id", req.HostID)
		hostTags = nil
	}

	out := Resolve(Input{
		Chain:        chain,
		TemplateTags: templateTags,
		HostTags:     hostTags,
		OwnTags:      req.OwnTags,
	})
	span.SetAttributes(
		attribute.Int("templates", len(chain)-1),
		attribute.Int("tags", len(out)),
	)
	return out, nil
}
