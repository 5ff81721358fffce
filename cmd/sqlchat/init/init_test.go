package initcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/init"
	"github.com/papercomputeco/sqlchat/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).NotTo(Succeed())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", Ordered, func() {
	var (
		tmpDir  string
		origDir string
	)

	readConfig := func() *config.Config {
		cfg := &config.Config{}
		_, err := toml.DecodeFile(filepath.Join(tmpDir, ".sqlchat", "config.toml"), cfg)
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	execute := func(args ...string) (string, error) {
		cmd := initcmder.NewInitCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs(append([]string{}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	BeforeEach(func() {
		var err error
		tmpDir = GinkgoT().TempDir()

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
	})

	It("creates a .sqlchat directory with a default config", func() {
		out, err := execute()
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Initialized"))

		info, err := os.Stat(filepath.Join(tmpDir, ".sqlchat"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())

		cfg := readConfig()
		Expect(cfg.Database.Driver).To(Equal("mysql"))
		Expect(cfg.Database.Port).To(Equal(uint(3306)))
		Expect(cfg.LLM.Model).To(Equal("gpt-4"))
	})

	It("writes the postgres preset", func() {
		_, err := execute("--preset", "postgres")
		Expect(err).NotTo(HaveOccurred())

		cfg := readConfig()
		Expect(cfg.Database.Driver).To(Equal("postgres"))
		Expect(cfg.Database.Port).To(Equal(uint(5432)))
	})

	It("writes the sqlite preset", func() {
		_, err := execute("--preset", "sqlite")
		Expect(err).NotTo(HaveOccurred())

		cfg := readConfig()
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Database.Name).To(Equal("sqlchat.db"))
	})

	It("rejects an unknown preset without creating anything", func() {
		_, err := execute("--preset", "oracle")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))

		_, err = os.Stat(filepath.Join(tmpDir, ".sqlchat"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("leaves an existing config untouched", func() {
		_, err := execute("--preset", "postgres")
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("--preset", "sqlite")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Already initialized"))
		Expect(readConfig().Database.Driver).To(Equal("postgres"))
	})
})
