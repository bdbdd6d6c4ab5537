// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package itemform

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianConsole/services/console/datatypes"
	cbadger "github.com/AleutianAI/AleutianConsole/services/console/storage/badger"
	"github.com/AleutianAI/AleutianConsole/services/console/store"
	"github.com/AleutianAI/AleutianConsole/services/console/tags"
)

const formFixture = `
hosts:
  - hostid: "10001"
    name: Linux by agent
    status: 3
    tags:
      - {tag: class, value: os}
      - {tag: env, value: prod}
  - hostid: "10002"
    name: Filesystems
    status: 3
    tags:
      - {tag: scope, value: fs}
  - hostid: "10100"
    name: web01
    status: 0
    templateids: ["10001"]
    tags:
      - {tag: env, value: prod}
    interfaces:
      - {interfaceid: "7", type: 1, ip: 10.0.0.7, port: "10050", useip: 1, main: 0}
      - {interfaceid: "12", type: 1, ip: 10.0.0.12, port: "10050", useip: 1, main: 1}
      - {interfaceid: "3", type: 2, ip: 10.0.0.3, port: "161", useip: 1, main: 0}
valuemaps:
  - {valuemapid: "5", name: Service state}
items:
  - itemid: "20001"
    hostid: "10001"
    name: CPU load
    key: system.cpu.load
    delay: 1m
    tags:
      - {tag: component, value: cpu}
  - itemid: "20000"
    hostid: "10100"
    name: CPU load
    key: system.cpu.load
    delay: "30s;50s/1-5,09:00-18:00;wd1-5h9"
    history: "0"
    trends: 365d
    templateid: "20001"
    valuemapid: "5"
    inventory_link: 5
    tags:
      - {tag: component, value: cpu}
      - {tag: owner, value: ops}
    preprocessing:
      - {type: 21, params: "return value;\nnext line"}
      - {type: 5, params: "a\nb"}
  - itemid: "20003"
    hostid: "10100"
    name: Status page
    key: web.status
    type: 19
    delay: "{$INTERVAL}"
    url: http://localhost/status
    authtype: 1
    username: admin
    password: secret
    master_itemid: "20000"
    query_fields:
      - {mode: full}
      - {verbose: "1"}
    headers:
      X-Token: abc
      Accept: application/json
  - {itemid: "20010", hostid: "10002", name: Mounted filesystems, key: vfs.fs.discovery, flags: 1}
  - {itemid: "30000", hostid: "10100", name: Mounted filesystems, key: vfs.fs.discovery, flags: 1, templateid: "20010"}
  - {itemid: "30002", hostid: "10100", name: "Free space on {#FSNAME}", key: "vfs.fs.free[{#FSNAME}]", flags: 2, discovery_ruleid: "30000"}
  - {itemid: "30001", hostid: "10100", name: "Free space on /", key: "vfs.fs.free[/]", flags: 4, discovery_ruleid: "30000", parent_itemid: "30002"}
  - {itemid: "40000", hostid: "10100", name: Trap, key: trap, type: 2, delay: "0"}
`

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	db, err := cbadger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(db, nil)
	fx, err := store.DecodeFixture(strings.NewReader(formFixture))
	require.NoError(t, err)
	_, err = s.Import(context.Background(), fx)
	require.NoError(t, err)

	return NewBuilder(s, tags.NewResolver(s, s, s, nil), nil, nil)
}

func TestBuild_StoredItem(t *testing.T) {
	b := newTestBuilder(t)

	data, err := b.Build(context.Background(), Request{Context: ContextHost, ItemID: "20000", TemplateAccess: true})
	require.NoError(t, err)

	assert.Equal(t, ActionName, data.Action)
	assert.Equal(t, "web01", data.Host.Name)
	assert.Equal(t, "20000", data.Form.ItemID)
	assert.Equal(t, "system.cpu.load", data.Form.Key)
	assert.Equal(t, datatypes.StorageOff, data.Form.HistoryMode)
	assert.Equal(t, datatypes.StorageCustom, data.Form.TrendsMode)
	assert.Equal(t, "30s", data.Form.Delay)
	assert.Equal(t, []DelayFlex{
		{Type: DelayFlexible, Delay: "50s", Period: "1-5,09:00-18:00"},
		{Type: DelayScheduling, Schedule: "wd1-5h9"},
	}, data.Form.DelayFlex)

	assert.True(t, data.Readonly)
	assert.Equal(t, &Caption{ID: "5", Name: "Service state"}, data.ValueMap)
	assert.Equal(t, []datatypes.TemplateSummary{
		{TemplateID: "10001", Name: "Linux by agent", ItemID: "20001", Editable: true},
	}, data.ParentItems)
	assert.Equal(t, datatypes.FlagDiscoveryNormal, data.Flags)
	assert.Nil(t, data.DiscoveryRule)

	assert.Equal(t, []datatypes.MergedTag{
		{Tag: "component", Value: "cpu"},
		{Tag: "owner", Value: "ops"},
	}, data.Form.Tags)
}

func TestBuild_Preprocessing(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, ItemID: "20000"})
	require.NoError(t, err)

	require.Len(t, data.Form.Preprocessing, 2)
	assert.Equal(t, []string{"return value;\nnext line", ""}, data.Form.Preprocessing[0].Params)
	assert.Equal(t, 0, data.Form.Preprocessing[0].SortOrder)
	assert.Equal(t, []string{"a", "b"}, data.Form.Preprocessing[1].Params)
	assert.Equal(t, 1, data.Form.Preprocessing[1].SortOrder)
}

func TestBuild_InheritedTags(t *testing.T) {
	b := newTestBuilder(t)

	data, err := b.Build(context.Background(), Request{
		Context: ContextHost, ItemID: "20000", ShowInheritedTags: true,
	})
	require.NoError(t, err)

	require.Len(t, data.Form.Tags, 4)
	byPair := map[string]datatypes.MergedTag{}
	for _, m := range data.Form.Tags {
		byPair[m.Tag+"="+m.Value] = m
	}
	assert.Equal(t, datatypes.ProvenanceInherited, byPair["class=os"].Provenance())
	assert.Equal(t, datatypes.ProvenanceInherited, byPair["env=prod"].Provenance())
	assert.Empty(t, byPair["env=prod"].ParentTemplates)
	assert.Equal(t, datatypes.ProvenanceOwn, byPair["component=cpu"].Provenance())
	assert.Equal(t, datatypes.ProvenanceOwn, byPair["owner=ops"].Provenance())
	assert.Equal(t, 1, data.Form.ShowInheritedTags)
}

func TestBuild_InventoryFields(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, ItemID: "20003"})
	require.NoError(t, err)

	assert.Len(t, data.InventoryFields, 70)
	assert.Equal(t, InventoryField{Label: "OS", Disabled: true}, data.InventoryFields[5])
	assert.Equal(t, InventoryField{Label: "Type", Disabled: false}, data.InventoryFields[1])
}

func TestBuild_Catalogues(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, HostID: "10100"})
	require.NoError(t, err)

	_, hasWebItem := data.Types[datatypes.ItemTypeHTTPTest]
	assert.False(t, hasWebItem)
	assert.Equal(t, "Zabbix agent", data.Types[datatypes.ItemTypeZabbixPassive])
	assert.Equal(t, 3, data.ValueTypeKeys[datatypes.ItemTypeZabbixPassive]["agent.ping"])
	assert.Equal(t, InterfaceTypeOptional, data.InterfaceTypes[datatypes.ItemTypeHTTPAgent])
}

func TestBuild_HTTPAgent(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, ItemID: "20003"})
	require.NoError(t, err)

	f := data.Form
	assert.Equal(t, "1", f.HTTPAuthType)
	assert.Equal(t, "admin", f.HTTPUsername)
	assert.Equal(t, "secret", f.HTTPPassword)
	assert.Equal(t, []NameValue{{Name: "mode", Value: "full"}, {Name: "verbose", Value: "1"}}, f.QueryFields)
	assert.Equal(t, []NameValue{{Name: "Accept", Value: "application/json"}, {Name: "X-Token", Value: "abc"}}, f.Headers)
	assert.Equal(t, "{$INTERVAL}", f.Delay)
	assert.Equal(t, &Caption{ID: "20000", Name: "CPU load"}, data.MasterItem)
	assert.False(t, data.Readonly)
}

func TestBuild_DiscoveredItem(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{
		Context: ContextHost, ItemID: "30001", ShowInheritedTags: true,
	})
	require.NoError(t, err)

	assert.Equal(t, datatypes.FlagDiscoveryCreated, data.Flags)
	assert.Equal(t, 1, data.Form.Discovered)
	require.NotNil(t, data.DiscoveryRule)
	assert.Equal(t, "Mounted filesystems", data.DiscoveryRule.Name)
	assert.Equal(t, "30002", data.DiscoveryItemID)

	// The chain is traced through the rule, which is inherited from 10002.
	var scope *datatypes.MergedTag
	for i := range data.Form.Tags {
		if data.Form.Tags[i].Tag == "scope" {
			scope = &data.Form.Tags[i]
		}
	}
	require.NotNil(t, scope)
	assert.Equal(t, datatypes.ProvenanceInherited, scope.Provenance())
	assert.Contains(t, scope.ParentTemplates, "10002")
}

func TestBuild_TrapperZeroDelay(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, ItemID: "40000"})
	require.NoError(t, err)
	assert.Equal(t, datatypes.DefaultDelay, data.Form.Delay)
}

func TestBuild_InterfacesMainFirst(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, HostID: "10100"})
	require.NoError(t, err)

	var ids []string
	for _, iface := range data.Host.Interfaces {
		ids = append(ids, iface.InterfaceID)
	}
	assert.Equal(t, []string{"12", "3", "7"}, ids)
}

func TestSortInterfaces_NumericIDOrder(t *testing.T) {
	in := []datatypes.Interface{
		{InterfaceID: "abc"},
		{InterfaceID: "10"},
		{InterfaceID: "9"},
		{InterfaceID: "100", Main: 1},
	}
	var ids []string
	for _, iface := range sortInterfaces(in) {
		ids = append(ids, iface.InterfaceID)
	}
	assert.Equal(t, []string{"100", "9", "10", "abc"}, ids)
}

func TestBuild_NewItemDefaults(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextHost, HostID: "10100"})
	require.NoError(t, err)

	assert.Equal(t, "", data.Form.ItemID)
	assert.Equal(t, "10100", data.Form.HostID)
	assert.Equal(t, datatypes.DefaultDelay, data.Form.Delay)
	assert.Equal(t, []datatypes.MergedTag{{}}, data.Form.Tags)
	assert.Empty(t, data.ParentItems)
	assert.False(t, data.Readonly)
}

func TestBuild_FormRefreshUsesInput(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{
		Context:     ContextHost,
		ItemID:      "20000",
		FormRefresh: true,
		Form:        &Form{ItemID: "20000", Name: "Edited", TemplateID: "20001"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Edited", data.Form.Name)
	assert.True(t, data.FormRefresh)
	assert.Equal(t, "10100", data.Form.HostID)
	assert.Len(t, data.ParentItems, 1)
	assert.True(t, data.Readonly)
}

func TestBuild_TemplateContext(t *testing.T) {
	b := newTestBuilder(t)
	data, err := b.Build(context.Background(), Request{Context: ContextTemplate, ItemID: "20001"})
	require.NoError(t, err)

	assert.Equal(t, datatypes.HostStatusTemplate, data.Host.Status)
	assert.Empty(t, data.Host.Interfaces)
	assert.Equal(t, "Linux by agent", data.Host.Name)
}

func TestBuild_ContextMismatchIsNotFound(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Build(context.Background(), Request{Context: ContextTemplate, HostID: "10100"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = b.Build(context.Background(), Request{Context: ContextHost, HostID: "10001"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBuild_UnknownItem(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Build(context.Background(), Request{Context: ContextHost, HostID: "10100", ItemID: "999"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBuild_Validation(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Build(context.Background(), Request{HostID: "10100"})
	assert.Error(t, err)

	_, err = b.Build(context.Background(), Request{Context: ContextHost})
	assert.Error(t, err)

	_, err = b.Build(context.Background(), Request{Context: "graph", HostID: "1"})
	assert.Error(t, err)
}

// =============================================================================
// Update intervals
// =============================================================================

func TestParseUpdateInterval(t *testing.T) {
	tests := []struct {
		in    string
		ok    bool
		delay string
		flex  int
	}{
		{"1m", true, "1m", 0},
		{"0", true, "0", 0},
		{"{$DELAY}", true, "{$DELAY}", 0},
		{"30s;10s/1-7,00:00-24:00", true, "30s", 1},
		{"0;wd1-5h9-18;md1", true, "0", 2},
		{"1m;{$FLEX}", true, "1m", 1},
		{"", false, "", 0},
		{"abc", false, "", 0},
		{"1m;", false, "", 0},
		{"1m;10s/8,00:00-24:00", false, "", 0},
		{"1m;xyz", false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseUpdateInterval(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.delay, got.Delay)
				assert.Len(t, got.Intervals, tt.flex)
			}
		})
	}
}

func TestTimeUnitToSeconds(t *testing.T) {
	for in, want := range map[string]int64{"0": 0, "30": 30, "30s": 30, "5m": 300, "2h": 7200, "1d": 86400, "1w": 604800} {
		got, ok := TimeUnitToSeconds(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := TimeUnitToSeconds("1y")
	assert.False(t, ok)
}

func TestFormDelay(t *testing.T) {
	tests := []struct {
		name string
		item datatypes.Item
		want string
	}{
		{"unparsable", datatypes.Item{Delay: "soon"}, "1m"},
		{"polled zero kept", datatypes.Item{Type: datatypes.ItemTypeZabbixPassive, Delay: "0"}, "0"},
		{"trapper zero", datatypes.Item{Type: datatypes.ItemTypeTrapper, Delay: "0"}, "1m"},
		{"snmp trap zero", datatypes.Item{Type: datatypes.ItemTypeSNMPTrap, Delay: "0s"}, "1m"},
		{"dependent zero", datatypes.Item{Type: datatypes.ItemTypeDependent, Delay: "0"}, "1m"},
		{"mqtt active zero", datatypes.Item{Type: datatypes.ItemTypeZabbixActive, Key: "mqtt.get[tcp://broker,topic]", Delay: "0"}, "1m"},
		{"other active zero", datatypes.Item{Type: datatypes.ItemTypeZabbixActive, Key: "log[/var/log/syslog]", Delay: "0"}, "0"},
		{"macro kept", datatypes.Item{Type: datatypes.ItemTypeTrapper, Delay: "{$D}"}, "{$D}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, flex := formDelay(tt.item)
			assert.Equal(t, tt.want, got)
			assert.NotNil(t, flex)
		})
	}
}
