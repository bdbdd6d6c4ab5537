// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package itemform assembles the data of the item edit form.
//
// # Description
//
// Builder loads the host or template the item belongs to, the item itself
// (or the submitted form when refreshing), captions of linked objects, the
// template chain, discovery rule data, inventory field availability and the
// static catalogues. Independent lookups run concurrently. When requested,
// the item's tags are replaced by the merged inherited tag list.
package itemform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianConsole/pkg/validation"
	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	"github.com/AleutianAI/AleutianConsole/services/console/observability"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
	"github.com/AleutianAI/AleutianConsole/services/console/tags"
)

var tracer = otel.Tracer("aleutian.console.itemform")

// Store is the data the builder reads.
type Store interface {
	GetHost(ctx context.Context, hostID string) (datatypes.Host, error)
	HostByItem(ctx context.Context, itemID string) (datatypes.Host, error)
	GetItem(ctx context.Context, itemID string) (datatypes.Item, error)
	GetValueMap(ctx context.Context, valueMapID string) (datatypes.ValueMap, error)
	ParentTemplates(ctx context.Context, itemID, templateID string) ([]datatypes.TemplateSummary, error)
	DiscoveryRule(ctx context.Context, item datatypes.Item) (*datatypes.DiscoveryRuleRef, error)
	InventoryLinks(ctx context.Context, hostID string) (map[int]bool, error)
}

// TagResolver merges inherited tags.
type TagResolver interface {
	Resolve(ctx context.Context, req tags.Request) ([]datatypes.MergedTag, error)
}

// Request is the input of the item edit action.
type Request struct {
	Context           string `form:"context" json:"context" validate:"required,oneof=host template"`
	HostID            string `form:"hostid" json:"hostid" validate:"required_without=ItemID,omitempty,numeric"`
	ItemID            string `form:"itemid" json:"itemid" validate:"omitempty,numeric"`
	FormRefresh       bool   `form:"form_refresh" json:"form_refresh"`
	ShowInheritedTags bool   `form:"show_inherited_tags" json:"show_inherited_tags"`

	// Form is the submitted form. Used for new items and refreshes.
	Form *Form `json:"form,omitempty"`

	// TemplateAccess marks parent template links as editable.
	TemplateAccess bool `json:"-"`
}

// HostView is the host or template the form is opened for.
type HostView struct {
	HostID     string                `json:"hostid"`
	Name       string                `json:"name"`
	Flags      int                   `json:"flags"`
	Status     int                   `json:"status"`
	Interfaces []datatypes.Interface `json:"interfaces"`
}

// Caption names a linked object.
type Caption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InventoryField is one entry of the inventory link select.
type InventoryField struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Data is everything the item form renders.
type Data struct {
	Action          string                      `json:"action"`
	Readonly        bool                        `json:"readonly"`
	Host            HostView                    `json:"host"`
	ValueMap        *Caption                    `json:"valuemap,omitempty"`
	InventoryFields map[int]InventoryField      `json:"inventory_fields"`
	Form            Form                        `json:"form"`
	FormRefresh     bool                        `json:"form_refresh"`
	ParentItems     []datatypes.TemplateSummary `json:"parent_items"`
	Flags           int                         `json:"flags"`
	DiscoveryRule   *datatypes.DiscoveryRuleRef `json:"discovery_rule,omitempty"`
	DiscoveryItemID string                      `json:"discovery_itemid"`
	MasterItem      *Caption                    `json:"master_item,omitempty"`
	Types           map[int]string              `json:"types"`
	InterfaceTypes  map[int]int                 `json:"interface_types"`
	ValueTypeKeys   map[int]map[string]int      `json:"value_type_keys"`
}

// ActionName is the name of the item edit action.
const ActionName = "item.edit"

// Builder assembles Data.
type Builder struct {
	store    Store
	resolver TagResolver
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewBuilder creates a Builder. metrics and logger may be nil.
func NewBuilder(s Store, resolver TagResolver, metrics *observability.Metrics, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:    s,
		resolver: resolver,
		metrics:  metrics,
		logger:   logger.With("component", "itemform"),
	}
}

// Build assembles the item form data for req.
//
// # Outputs
//
//   - *Data: Form data.
//   - error: Validation errors, store.ErrNotFound (wrapped) when the host,
//     template or item does not exist, storage errors otherwise.
func (b *Builder) Build(ctx context.Context, req Request) (*Data, error) {
	if err := datatypes.Validate(&req); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "itemform.Builder.Build")
	defer span.End()
	span.SetAttributes(
		attribute.String("context", req.Context),
		attribute.String("item_id", req.ItemID),
		attribute.Bool("form_refresh", req.FormRefresh),
	)

	cat, err := LoadCatalogue()
	if err != nil {
		return nil, err
	}

	host, err := b.loadHost(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	data := &Data{
		Action:          ActionName,
		Host:            host,
		FormRefresh:     req.FormRefresh,
		ParentItems:     []datatypes.TemplateSummary{},
		Flags:           datatypes.FlagDiscoveryNormal,
		Types:           cat.Types(),
		InterfaceTypes:  cat.InterfaceTypes(),
		ValueTypeKeys:   cat.ValueTypeKeys(),
		InventoryFields: make(map[int]InventoryField, len(cat.InventoryFields)),
	}

	var stored *datatypes.Item
	if req.FormRefresh || req.ItemID == "" {
		data.Form = fromInput(req.Form, req.Context, host.HostID)
	} else {
		item, err := b.store.GetItem(ctx, req.ItemID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("load item: %w", err)
		}
		stored = &item
		data.Form = fromItem(item, req.Context)
	}
	if req.ShowInheritedTags {
		data.Form.ShowInheritedTags = 1
	}

	g, gctx := errgroup.WithContext(ctx)

	if id := data.Form.ValueMapID; id != "" && id != "0" {
		g.Go(func() error {
			vm, err := b.store.GetValueMap(gctx, id)
			if err != nil {
				return ignoreNotFound(err)
			}
			data.ValueMap = &Caption{ID: vm.ValueMapID, Name: vm.Name}
			return nil
		})
	}

	if id := data.Form.MasterItemID; id != "" && id != "0" {
		g.Go(func() error {
			master, err := b.store.GetItem(gctx, id)
			if err != nil {
				return ignoreNotFound(err)
			}
			data.MasterItem = &Caption{ID: master.ItemID, Name: master.Name}
			return nil
		})
	}

	if data.Form.ItemID != "" {
		itemID, templateID := data.Form.ItemID, data.Form.TemplateID
		g.Go(func() error {
			chain, err := b.store.ParentTemplates(gctx, itemID, templateID)
			if err != nil {
				return fmt.Errorf("load parent templates: %w", err)
			}
			data.ParentItems = parentItems(chain, req.TemplateAccess)
			return nil
		})
		g.Go(func() error {
			item := stored
			if item == nil {
				dbItem, err := b.store.GetItem(gctx, itemID)
				if err != nil {
					return ignoreNotFound(err)
				}
				item = &dbItem
			}
			rule, err := b.store.DiscoveryRule(gctx, *item)
			if err != nil {
				return fmt.Errorf("load discovery rule: %w", err)
			}
			data.Flags = item.Flags
			data.DiscoveryRule = rule
			if item.Flags == datatypes.FlagDiscoveryCreated {
				data.DiscoveryItemID = item.ParentItemID
			}
			return nil
		})
	}

	var links map[int]bool
	g.Go(func() error {
		var err error
		links, err = b.store.InventoryLinks(gctx, host.HostID)
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, field := range cat.InventoryFields {
		data.InventoryFields[field.Nr] = InventoryField{
			Label:    field.Title,
			Disabled: links[field.Nr],
		}
	}

	if req.ShowInheritedTags {
		merged, err := b.resolver.Resolve(ctx, tags.Request{
			ItemID:        data.Form.ItemID,
			TemplateID:    data.Form.TemplateID,
			HostID:        host.HostID,
			OwnTags:       plainTags(data.Form.Tags),
			DiscoveryRule: data.DiscoveryRule,
		})
		b.metrics.RecordTagResolution(len(merged), err)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		data.Form.Tags = merged
	}

	if data.Form.TemplateID != "" && data.Form.TemplateID != "0" {
		data.Readonly = true
	}

	b.logger.Debug("item form assembled",
		"item_id", data.Form.ItemID,
		"host_id", host.HostID,
		"readonly", data.Readonly,
		"parent_items", len(data.ParentItems))
	return data, nil
}

func (b *Builder) loadHost(ctx context.Context, req Request) (HostView, error) {
	var (
		host datatypes.Host
		err  error
	)
	if req.HostID != "" {
		host, err = b.store.GetHost(ctx, req.HostID)
	} else {
		host, err = b.store.HostByItem(ctx, req.ItemID)
	}
	if err != nil {
		return HostView{}, fmt.Errorf("load %s: %w", req.Context, err)
	}

	if req.Context == ContextTemplate {
		if !host.IsTemplate() {
			return HostView{}, fmt.Errorf("template %s: %w", host.HostID, store.ErrNotFound)
		}
		return HostView{
			HostID:     host.HostID,
			Name:       host.Name,
			Flags:      host.Flags,
			Status:     datatypes.HostStatusTemplate,
			Interfaces: []datatypes.Interface{},
		}, nil
	}

	if host.IsTemplate() {
		return HostView{}, fmt.Errorf("host %s: %w", host.HostID, store.ErrNotFound)
	}
	return HostView{
		HostID:     host.HostID,
		Name:       host.Name,
		Flags:      host.Flags,
		Status:     host.Status,
		Interfaces: sortInterfaces(host.Interfaces),
	}, nil
}

// sortInterfaces lists the main interface first, then the rest by id.
func sortInterfaces(in []datatypes.Interface) []datatypes.Interface {
	byID := make(map[string]datatypes.Interface, len(in))
	for _, iface := range in {
		byID[iface.InterfaceID] = iface
	}
	out := make([]datatypes.Interface, 0, len(byID))
	for _, iface := range byID {
		out = append(out, iface)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Main != out[j].Main {
			return out[i].Main > out[j].Main
		}
		return validation.LessID(out[i].InterfaceID, out[j].InterfaceID)
	})
	return out
}

func parentItems(chain []datatypes.TemplateSummary, editable bool) []datatypes.TemplateSummary {
	out := []datatypes.TemplateSummary{}
	if len(chain) <= 1 {
		return out
	}
	for _, tpl := range chain[1:] {
		tpl.Editable = editable
		out = append(out, tpl)
	}
	return out
}

func plainTags(merged []datatypes.MergedTag) []datatypes.Tag {
	out := make([]datatypes.Tag, 0, len(merged))
	for _, m := range merged {
		if m.Tag == "" && m.Value == "" {
			continue
		}
		out = append(out, datatypes.Tag{Tag: m.Tag, Value: m.Value})
	}
	return out
}

func ignoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
