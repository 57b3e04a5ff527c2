// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

//go:build integration

package pipeline_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/craftops/addonsmith/internal/addon"
	"github.com/craftops/addonsmith/internal/world"
)

var _ = Describe("Add-on lifecycle", func() {
	var (
		ctx context.Context
		env *testEnv
	)

	BeforeEach(func() {
		ctx = context.Background()
		env = newTestEnv()
	})

	ghostPack := addonSpec{
		name:         "haunted-nights",
		behaviorUUID: "11111111-2222-3333-4444-555555555555",
		resourceUUID: "66666666-7777-8888-9999-aaaaaaaaaaaa",
		version:      [3]int{1, 0, 0},
		entities:     []string{"haunt:ghost", "haunt:wraith"},
	}

	Describe("Installing an archive", func() {
		It("copies both packs, activates them, and restarts the server", func() {
			report, err := env.svc.Install(ctx, env.buildAddon(ghostPack))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Success).To(BeTrue())
			Expect(report.Pack).To(Equal("haunted-nights"))

			Expect(filepath.Join(env.cfg.BehaviorRoot(), "haunted-nights")).To(BeADirectory())
			Expect(filepath.Join(env.cfg.ResourceRoot(), "haunted-nights")).To(BeADirectory())

			refs, err := env.refs.Read(world.BehaviorRefsFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(1))
			Expect(refs[0].PackID).To(Equal(ghostPack.behaviorUUID))

			Expect(env.lifecycle.restartCount()).To(Equal(1))
			Expect(report.Entities).To(ConsistOf("haunt:ghost", "haunt:wraith"))
			Expect(report.Summon).To(ContainElement("/summon haunt:ghost"))
		})

		It("replaces the world references when a second add-on is installed", func() {
			_, err := env.svc.Install(ctx, env.buildAddon(ghostPack))
			Expect(err).NotTo(HaveOccurred())

			second := addonSpec{
				name:         "deep-caves",
				behaviorUUID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
				resourceUUID: "ffffffff-0000-1111-2222-333333333333",
				version:      [3]int{1, 0, 0},
			}
			_, err = env.svc.Install(ctx, env.buildAddon(second))
			Expect(err).NotTo(HaveOccurred())

			refs, err := env.refs.Read(world.BehaviorRefsFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(HaveLen(1), "the world activates only the latest pack")
			Expect(refs[0].PackID).To(Equal(second.behaviorUUID))

			// Both packs remain on disk.
			names, err := env.svc.Registry().List()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(ConsistOf("deep-caves", "haunted-nights"))
		})

		It("warns when overwriting with an older version", func() {
			newer := ghostPack
			newer.version = [3]int{2, 0, 0}
			_, err := env.svc.Install(ctx, env.buildAddon(newer))
			Expect(err).NotTo(HaveOccurred())

			older := ghostPack
			older.version = [3]int{1, 2, 0}
			report, err := env.svc.Install(ctx, env.buildAddon(older))
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Success).To(BeTrue())
			Expect(report.Warnings).To(ContainElement(ContainSubstring("older version")))
		})
	})

	Describe("Removing add-ons", func() {
		BeforeEach(func() {
			_, err := env.svc.Install(ctx, env.buildAddon(ghostPack))
			Expect(err).NotTo(HaveOccurred())
		})

		It("despawns entities, deletes the packs, and clears the world", func() {
			report, err := env.svc.Remove(ctx, addon.RemoveRequest{Packs: []string{"haunted-nights"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Removed).To(Equal(1))

			Expect(env.console.sent()).To(ContainElements(
				"say Removing add-ons: haunted-nights",
				"kill @e[type=haunt:ghost]",
				"kill @e[type=haunt:wraith]",
			))

			Expect(filepath.Join(env.cfg.BehaviorRoot(), "haunted-nights")).NotTo(BeADirectory())

			refs, err := env.refs.Read(world.BehaviorRefsFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(refs).To(BeEmpty())

			Expect(env.lifecycle.restartCount()).To(Equal(2), "one restart for install, one for removal")
		})

		It("supports removing everything at once", func() {
			second := addonSpec{
				name:         "deep-caves",
				behaviorUUID: "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
				resourceUUID: "ffffffff-0000-1111-2222-333333333333",
				version:      [3]int{1, 0, 0},
			}
			_, err := env.svc.Install(ctx, env.buildAddon(second))
			Expect(err).NotTo(HaveOccurred())

			report, err := env.svc.Remove(ctx, addon.RemoveRequest{All: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Removed).To(Equal(2))

			names, err := env.svc.Registry().List()
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(BeEmpty())
		})

		It("reports packs that were never installed", func() {
			report, err := env.svc.Remove(ctx, addon.RemoveRequest{Packs: []string{"no-such-pack"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Removed).To(BeZero())
			Expect(report.NotFound).To(ConsistOf("no-such-pack"))
		})
	})
})
