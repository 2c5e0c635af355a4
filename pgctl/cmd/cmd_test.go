package cmd

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/packetgraph/datarecording"
)

var _ = Describe("kinds", func() {
	It("should list the shipped kinds", func() {
		out, err := execute("kinds")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(
			"collect\ngenerator\nhub\nnop\nprint\nqueue\n"))
	})
})

var _ = Describe("check", func() {
	It("should report every graph of a split pipeline", func() {
		out, err := execute("check", "-c", writePipeline(splitPipeline))

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("pipeline demo: 2 graph(s)\n"))
		Expect(out).To(ContainSubstring("  demo: "))
	})

	It("should read the pipeline path from the environment", func() {
		GinkgoT().Setenv(envConfig, writePipeline(splitPipeline))

		out, err := execute("check")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("pipeline demo"))
	})

	It("should prefer the flag over the environment", func() {
		GinkgoT().Setenv(envConfig, "/nonexistent/pipeline.yaml")

		_, err := execute("check", "-c", writePipeline(splitPipeline))

		Expect(err).NotTo(HaveOccurred())
	})

	It("should fail on an unknown kind", func() {
		path := writePipeline(`
bricks:
  - {name: a, kind: teleporter}
`)

		_, err := execute("check", "-c", path)

		Expect(err).To(HaveOccurred())
	})

	It("should fail on a missing file", func() {
		_, err := execute("check", "-c", "/nonexistent/pipeline.yaml")

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("dot", func() {
	It("should print one digraph per graph", func() {
		out, err := execute("dot", "-c", writePipeline(splitPipeline))

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring(`"gen" -> "hub"`))
		Expect(out).To(ContainSubstring(`"q-e" -> "out"`))
		Expect(out).To(ContainSubstring("digraph"))
	})
})

var _ = Describe("run", func() {
	It("should poll every graph the requested number of times", func() {
		out, err := execute("run", "-c", writePipeline(splitPipeline))

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("pipeline demo: 2 graph(s), 6 poll(s)\n"))
	})

	It("should let the flag override the iterations", func() {
		out, err := execute("run", "--iterations", "1",
			"-c", writePipeline(splitPipeline))

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("pipeline demo: 2 graph(s), 2 poll(s)\n"))
	})

	It("should reject a malformed monitor port", func() {
		GinkgoT().Setenv(envMonitorPort, "eighty")

		_, err := execute("run", "-c", writePipeline(splitPipeline))

		Expect(err).To(MatchError(ContainSubstring(envMonitorPort)))
	})

	It("should record the run", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "run")
		path := writePipeline(splitPipeline + `
recorder: {enabled: true, path: ` + dbPath + `, trace: true}
monitor: {enabled: true}
metrics: {enabled: true, listen: "127.0.0.1:0"}
`)

		_, err := execute("run", "-c", path)
		Expect(err).NotTo(HaveOccurred())
		Expect(dbPath + ".sqlite3").To(BeAnExistingFile())

		reader, err := datarecording.NewReader(dbPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		reader.MapTable(datarecording.ExecInfoTable, datarecording.ExecInfo{})
		reader.MapTable(datarecording.BrickStatsTable, datarecording.BrickStat{})

		info, _, err := reader.Query(context.Background(),
			datarecording.ExecInfoTable, datarecording.QueryParams{
				Where: "Property = ?",
				Args:  []any{"Polls"},
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(info).To(HaveLen(1))
		Expect(info[0].(*datarecording.ExecInfo).Value).To(Equal("6"))

		_, bricks, err := reader.Query(context.Background(),
			datarecording.BrickStatsTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(bricks).To(Equal(5))
	})

	It("should refuse to overwrite a recording", func() {
		dbPath := filepath.Join(GinkgoT().TempDir(), "run")
		Expect(os.WriteFile(dbPath+".sqlite3", nil, 0o600)).To(Succeed())

		path := writePipeline(splitPipeline + `
recorder: {enabled: true, path: ` + dbPath + `}
`)

		_, err := execute("run", "-c", path)

		Expect(err).To(MatchError(ContainSubstring("already exists")))
	})
})
