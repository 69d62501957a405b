package loader_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsoc/loader"
)

var _ = Describe("Hex loader", func() {
	It("should read one word per line", func() {
		words, err := loader.ReadHex(strings.NewReader("00000013\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{0x13}))
	})

	It("should skip comments and blank lines", func() {
		src := `
// boot
02a00093   # addi x1, x0, 42

00000013 // nop
`
		words, err := loader.ReadHex(strings.NewReader(src))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{0x02A00093, 0x13}))
	})

	It("should jump to @index and zero-fill the gap", func() {
		words, err := loader.ReadHex(strings.NewReader("1\n@4\n30200073 2"))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{1, 0, 0, 0, 0x30200073, 2}))
	})

	It("should accept underscores inside words", func() {
		words, err := loader.ReadHex(strings.NewReader("dead_beef"))
		Expect(err).NotTo(HaveOccurred())
		Expect(words).To(Equal([]uint32{0xDEADBEEF}))
	})

	It("should report the bad line", func() {
		_, err := loader.ReadHex(strings.NewReader("13\nzzzz\n"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	It("should reject words wider than 32 bits", func() {
		_, err := loader.ReadHex(strings.NewReader("123456789"))
		Expect(err).To(HaveOccurred())
	})

	It("should load a file into the ROM image", func() {
		path := filepath.Join(GinkgoT().TempDir(), "fw.hex")
		Expect(os.WriteFile(path, []byte("13\n6f\n"), 0644)).To(Succeed())

		img, err := loader.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.ROM).To(Equal([]uint32{0x13, 0x6F}))
		Expect(img.RAM).To(BeEmpty())
	})

	It("should wrap open errors", func() {
		_, err := loader.LoadHex(filepath.Join(GinkgoT().TempDir(), "none.hex"))
		Expect(err).To(MatchError(os.ErrNotExist))
	})
})
