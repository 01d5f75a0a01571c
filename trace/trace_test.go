package trace_test

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/aurora/trace"
)

func writeDoc(dir, name string, v interface{}) string {
	path := filepath.Join(dir, name)
	b, err := json.Marshal(v)
	Expect(err).NotTo(HaveOccurred())
	Expect(os.WriteFile(path, b, 0o644)).To(Succeed())
	return path
}

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "trace-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("decodes a plain JSON trace document", func() {
		doc := map[string]interface{}{
			"image_base":    0x555555554000,
			"first_address": 0x401000,
			"last_address":  0x401020,
			"instructions": []map[string]interface{}{
				{
					"address":       0x401000,
					"mnemonic":      "mov rax, 0x10",
					"registers_min": map[string]uint64{"0": 0x10},
					"registers_max": map[string]uint64{"0": 0x10},
				},
				{
					"address":  0x401010,
					"mnemonic": "mov [rbp-0x8], rax",
					"memory": map[string]uint64{
						"min_address": 0x7ffd0000, "max_address": 0x7ffd0000,
						"last_address": 0x7ffd0000,
						"min_value":    0x10, "max_value": 0x10, "last_value": 0x10,
					},
				},
			},
			"edges": []map[string]interface{}{
				{"from": 0x401000, "to": 0x401010, "count": 1},
			},
		}
		path := writeDoc(dir, "trace.json", doc)

		tr, err := trace.Load("crash-1", path)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Name).To(Equal("crash-1"))
		Expect(tr.Instructions).To(HaveLen(2))

		at0, ok := tr.At(0x401000)
		Expect(ok).To(BeTrue())
		Expect(at0.Successors).To(Equal([]uint64{0x401010}))

		memInstr, ok := tr.At(0x401010)
		Expect(ok).To(BeTrue())
		v, ok := memInstr.Min(trace.RegMemoryAddress)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint64(0x7ffd0000)))
	})

	It("decodes a trace packed inside a single-entry zip", func() {
		doc := map[string]interface{}{
			"image_base": 0, "first_address": 0x401000, "last_address": 0x401000,
			"instructions": []map[string]interface{}{
				{"address": 0x401000, "mnemonic": "ret"},
			},
			"edges": []map[string]interface{}{},
		}
		b, err := json.Marshal(doc)
		Expect(err).NotTo(HaveOccurred())

		zipPath := filepath.Join(dir, "trace.zip")
		zf, err := os.Create(zipPath)
		Expect(err).NotTo(HaveOccurred())
		zw := zip.NewWriter(zf)
		w, err := zw.Create("trace.json")
		Expect(err).NotTo(HaveOccurred())
		_, err = w.Write(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(zw.Close()).To(Succeed())
		Expect(zf.Close()).To(Succeed())

		tr, err := trace.LoadZip("crash-zip", zipPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Instructions).To(HaveLen(1))
	})

	It("rejects a zip with more than one entry", func() {
		zipPath := filepath.Join(dir, "bad.zip")
		zf, err := os.Create(zipPath)
		Expect(err).NotTo(HaveOccurred())
		zw := zip.NewWriter(zf)
		for _, n := range []string{"a.json", "b.json"} {
			w, err := zw.Create(n)
			Expect(err).NotTo(HaveOccurred())
			_, _ = w.Write([]byte("{}"))
		}
		Expect(zw.Close()).To(Succeed())
		Expect(zf.Close()).To(Succeed())

		_, err = trace.LoadZip("bad", zipPath)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Vec", func() {
	It("unions visited addresses and counts containment", func() {
		a := &trace.Trace{Instructions: map[uint64]trace.Instruction{
			0x1: {Address: 0x1}, 0x2: {Address: 0x2},
		}}
		b := &trace.Trace{Instructions: map[uint64]trace.Instruction{
			0x2: {Address: 0x2}, 0x3: {Address: 0x3},
		}}
		v := &trace.Vec{Label: "crashes", Traces: []*trace.Trace{a, b}}

		Expect(v.VisitedAddressUnion()).To(HaveLen(3))
		Expect(v.CountContaining(0x2)).To(Equal(2))
		Expect(v.CountContaining(0x3)).To(Equal(1))
		Expect(v.CountContaining(0x4)).To(Equal(0))
	})
})
