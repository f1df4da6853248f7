package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tauraamui/dragonplayer/pkg/config"
	"github.com/tauraamui/dragonplayer/pkg/configdef"
)

var _ = Describe("Config", func() {
	var (
		tempDir          string
		configPath       string
		existingEnvValue string
		existingEnvSet   bool
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "dragonplayer-config")
		Expect(err).ToNot(HaveOccurred())

		configPath = filepath.Join(tempDir, "tacusci", "dragonplayer", "config.json")
		existingEnvValue, existingEnvSet = os.LookupEnv("DRAGON_PLAYER_CONFIG")
		Expect(os.Setenv("DRAGON_PLAYER_CONFIG", configPath)).To(Succeed())
	})

	AfterEach(func() {
		if existingEnvSet {
			os.Setenv("DRAGON_PLAYER_CONFIG", existingEnvValue)
		} else {
			os.Unsetenv("DRAGON_PLAYER_CONFIG")
		}
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	Describe("Loading without a config file", func() {
		It("Should return the default values", func() {
			values, err := config.DefaultResolver().Load()
			Expect(err).ToNot(HaveOccurred())
			Expect(values.VideoBackend).To(Equal("opencv"))
			Expect(values.DefaultSpeed).To(Equal("normal"))
			Expect(values.ImageSequence.Digits).To(Equal(4))
			Expect(values.ImageSequence.CountMode).To(Equal("all"))
			Expect(values.Export.MaxFrames).To(Equal(10000))
		})
	})

	Describe("Creating a config file", func() {
		It("Should write defaults which load back identically", func() {
			Expect(config.DefaultCreator().Create()).To(Succeed())
			Expect(configPath).To(BeAnExistingFile())

			created, err := config.DefaultCreateResolver().Resolve()
			Expect(err).ToNot(HaveOccurred())
			defaults, err := config.DefaultResolver().Load()
			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(Equal(defaults))
		})

		It("Should refuse to overwrite an existing config file", func() {
			Expect(config.DefaultCreator().Create()).To(Succeed())
			err := config.DefaultCreateResolver().Create()
			Expect(err).To(MatchError(configdef.ErrConfigAlreadyExists))
		})
	})

	Describe("Loading a config file", func() {
		BeforeEach(func() {
			Expect(os.MkdirAll(filepath.Dir(configPath), os.ModePerm)).To(Succeed())
		})

		It("Should load provided values", func() {
			Expect(os.WriteFile(configPath, []byte(`{
				"debug": true,
				"video_backend": "mock",
				"default_speed": "up2x",
				"export": { "extension": ".png" }
			}`), 0644)).To(Succeed())

			values, err := config.DefaultResolver().Load()
			Expect(err).ToNot(HaveOccurred())
			Expect(values.Debug).To(BeTrue())
			Expect(values.VideoBackend).To(Equal("mock"))
			Expect(values.DefaultSpeed).To(Equal("up2x"))
			Expect(values.Export.Extension).To(Equal(".png"))
			Expect(values.Export.Digits).To(Equal(4))
		})

		It("Should return error from invalid JSON", func() {
			Expect(os.WriteFile(configPath, []byte(`{ "debug" true, }`), 0644)).To(Succeed())

			_, err := config.DefaultResolver().Load()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing configuration error"))
		})

		It("Should return error from failed validation", func() {
			Expect(os.WriteFile(configPath, []byte(`{ "default_speed": "warp" }`), 0644)).To(Succeed())

			_, err := config.DefaultResolver().Load()
			Expect(err).To(MatchError("validation failed: unknown playback speed [warp]"))
		})
	})

	Describe("Destroying a config file", func() {
		It("Should remove the created file", func() {
			Expect(config.DefaultCreator().Create()).To(Succeed())
			Expect(config.DefaultDestroyer().Destroy()).To(Succeed())
			Expect(configPath).ToNot(BeAnExistingFile())
		})
	})
})
